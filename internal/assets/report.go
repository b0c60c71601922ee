package assets

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/at-ishikawa/legogate/internal/pipeline"
)

const courseReportTemplateName = "course-report.md.go.tmpl"

//go:embed templates/course-report.md.go.tmpl
var fallbackCourseReportTemplate string

// WriteCourseReport renders a report as Markdown. templatePath may be empty or missing, in which
// case the embedded template is used.
func WriteCourseReport(output io.Writer, templatePath string, report *pipeline.Report) error {
	tmpl, err := parseTemplateWithFallback(templatePath, courseReportTemplateName, fallbackCourseReportTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, report); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
