package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shiftworks/timeclock/timelog"
)

// reportTemplate is the printable report layout: fixed title block and
// one table row per entry, same column set as the CSV export.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>Time Records Report</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 20px; }
      table { width: 100%; border-collapse: collapse; margin-top: 20px; }
      th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
      th { background-color: #f2f2f2; }
      .header { text-align: center; margin-bottom: 20px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>Time Records Report</h1>
      <p>Generated on: {{.GeneratedOn}}</p>
    </div>
    <table>
      <thead>
        <tr>
          <th>Employee</th>
          <th>Date</th>
          <th>Clock In</th>
          <th>Clock Out</th>
          <th>Total Hours</th>
          <th>Location</th>
        </tr>
      </thead>
      <tbody>
        {{range .Rows}}<tr>
          <td>{{.Name}}</td>
          <td>{{.Date}}</td>
          <td>{{.ClockIn}}</td>
          <td>{{.ClockOut}}</td>
          <td>{{.Hours}} hours</td>
          <td>{{.Location}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{if .Print}}<script>window.print()</script>{{end}}
  </body>
</html>
`))

type reportRow struct {
	Name     string
	Date     string
	ClockIn  string
	ClockOut string
	Hours    string
	Location string
}

type reportData struct {
	GeneratedOn string
	Rows        []reportRow
	Print       bool
}

// Report renders all entries as a printable HTML document. With print
// set, the document invokes the platform print dialog on open. A
// zero-row log produces a valid document with an empty table.
func Report(entries []timelog.Entry, generatedAt time.Time, print bool) ([]byte, error) {
	data := reportData{
		GeneratedOn: generatedAt.UTC().Format("2006-01-02"),
		Print:       print,
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, reportRow{
			Name:     e.EmployeeName,
			Date:     e.Date,
			ClockIn:  clockTime(e.ClockIn),
			ClockOut: clockOutField(e),
			Hours:    hoursField(e),
			Location: e.Location,
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
