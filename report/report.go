// Package report renders worker results for the user.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"git.scc.kit.edu/sdm/lsdf-sha1sum/worker"
)

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "table"}

// Reporter writes results. Results must be passed in the order they should
// appear in, Flush must be called after the last result.
type Reporter interface {
	Report(result *worker.Result) error
	Flush() error
}

func New(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "text":
		return &textReporter{w: w}, nil
	case "json":
		return &jsonReporter{enc: json.NewEncoder(w)}, nil
	case "table":
		return &tableReporter{w: w}, nil
	default:
		return nil, fmt.Errorf("report: unsupported format '%s'", format)
	}
}

// textReporter prints sha1sum compatible lines.
type textReporter struct {
	w io.Writer
}

func (t *textReporter) Report(result *worker.Result) error {
	var err error

	switch result.Kind {
	case worker.KindOK:
		_, err = fmt.Fprintf(t.w, "%s  %s\n", result.Sum, result.Input.Name)
	case worker.KindOpenError:
		_, err = fmt.Fprintf(t.w, "file read error: %v\n", result.Err)
	case worker.KindNotRegular:
		_, err = fmt.Fprintf(t.w, "this is not a file: %s\n", result.Input.Name)
	default:
		_, err = fmt.Fprintf(t.w, "read error: %s: %v\n", result.Input.Name, result.Err)
	}

	return err
}

func (t *textReporter) Flush() error {
	return nil
}

type jsonResult struct {
	Name      string `json:"name"`
	SHA1      string `json:"sha1,omitempty"`
	BytesRead uint64 `json:"bytes_read"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// jsonReporter prints one JSON object per line.
type jsonReporter struct {
	enc *json.Encoder
}

func (j *jsonReporter) Report(result *worker.Result) error {
	out := jsonResult{
		Name:      result.Input.Name,
		BytesRead: result.BytesRead,
		Status:    result.Kind.String(),
	}
	if result.Kind == worker.KindOK {
		out.SHA1 = result.Sum.String()
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}

	return j.enc.Encode(out)
}

func (j *jsonReporter) Flush() error {
	return nil
}

// tableReporter collects all results and renders an ASCII table on Flush.
type tableReporter struct {
	w    io.Writer
	rows [][]string
}

func (t *tableReporter) Report(result *worker.Result) error {
	sum := tablewriter.ConditionString(result.Kind == worker.KindOK, result.Sum.String(), "")
	errStr := ""
	if result.Err != nil {
		errStr = result.Err.Error()
	}

	t.rows = append(t.rows, []string{
		sum,
		result.Input.Name,
		result.Kind.String(),
		errStr,
	})

	return nil
}

func (t *tableReporter) Flush() error {
	table := tablewriter.NewWriter(t.w)

	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)

	table.SetHeader([]string{
		"SHA1",
		"Name",
		"Status",
		"Error",
	})
	table.AppendBulk(t.rows)

	table.Render()

	t.rows = nil

	return nil
}
