package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/legogate/internal/assets"
	"github.com/at-ishikawa/legogate/internal/corpus"
	"github.com/at-ishikawa/legogate/internal/pdf"
	"github.com/at-ishikawa/legogate/internal/pipeline"
)

type ReportFormat string

const (
	ReportFormatText     ReportFormat = "text"
	ReportFormatJSON     ReportFormat = "json"
	ReportFormatYAML     ReportFormat = "yaml"
	ReportFormatMarkdown ReportFormat = "markdown"
)

// ReportFormats lists every format in the order shown in help messages
var ReportFormats = []ReportFormat{ReportFormatText, ReportFormatJSON, ReportFormatYAML, ReportFormatMarkdown}

// Validate runs the whole pipeline over the course.
func (c *Course) Validate(ctx context.Context) (*pipeline.Report, error) {
	opts, err := c.PipelineOptions()
	if err != nil {
		return nil, fmt.Errorf("PipelineOptions() > %w", err)
	}
	report, err := pipeline.Run(ctx, c.Input(), opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run() > %w", err)
	}
	return report, nil
}

// WriteReport writes a report in one format. templatePath is only used for markdown.
func WriteReport(output io.Writer, report *pipeline.Report, format ReportFormat, templatePath string) error {
	switch format {
	case ReportFormatText:
		NewReportPrinter(output).PrintReport(report)
		return nil
	case ReportFormatJSON, ReportFormatYAML:
		corpusFormat := corpus.FormatJSON
		if format == ReportFormatYAML {
			corpusFormat = corpus.FormatYAML
		}
		content, err := corpus.Encode(report, corpusFormat)
		if err != nil {
			return fmt.Errorf("corpus.Encode() > %w", err)
		}
		if _, err := output.Write(content); err != nil {
			return fmt.Errorf("output.Write() > %w", err)
		}
		return nil
	case ReportFormatMarkdown:
		if err := assets.WriteCourseReport(output, templatePath, report); err != nil {
			return fmt.Errorf("assets.WriteCourseReport() > %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported report format %q", format)
}

// SaveReport writes a report to outputPath, or to the report directory when it is empty.
// With generatePDF the markdown report is converted and the PDF path is returned.
func (c *Course) SaveReport(report *pipeline.Report, format ReportFormat, outputPath string, generatePDF bool) (string, error) {
	if generatePDF && format != ReportFormatMarkdown {
		return "", fmt.Errorf("a PDF can only be generated from a markdown report, got %s", format)
	}
	if outputPath == "" {
		outputPath = filepath.Join(c.cfg.Outputs.ReportDirectory, defaultReportName(report, format))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(outputPath), err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", outputPath, err)
	}
	if err := WriteReport(file, report, format, c.cfg.Outputs.ReportTemplate); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("WriteReport() > %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("file.Close() > %w", err)
	}

	if !generatePDF {
		return outputPath, nil
	}
	pdfPath, err := pdf.ConvertMarkdownToPDF(outputPath)
	if err != nil {
		return "", fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", outputPath, err)
	}
	return pdfPath, nil
}

func defaultReportName(report *pipeline.Report, format ReportFormat) string {
	extension := map[ReportFormat]string{
		ReportFormatText:     "txt",
		ReportFormatJSON:     "json",
		ReportFormatYAML:     "yml",
		ReportFormatMarkdown: "md",
	}[format]
	fingerprint := report.Fingerprint
	if len(fingerprint) > 8 {
		fingerprint = fingerprint[:8]
	}
	return fmt.Sprintf("course-report-%s.%s", fingerprint, extension)
}
