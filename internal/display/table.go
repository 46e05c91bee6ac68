package display

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/seenimoa/finflux/pkg/series"
)

func writeTable(w io.Writer, r Result) error {
	if f := r.table(); f != nil {
		return FrameTable(w, f)
	}
	if t, ok := r.Value.(Tabler); ok {
		header, rows := t.TableRows()
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}
	if r.Value == nil {
		return ErrNothingToRender
	}
	rows, err := flatten(r.Value)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, kv := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", kv[0], kv[1])
	}
	return tw.Flush()
}

// FrameTable writes f as an aligned text table with an optional title line.
func FrameTable(w io.Writer, f *series.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if f.Title != "" {
		fmt.Fprintln(w, f.Title)
	}
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(f.Columns, "\t"))
	for i, label := range f.Index {
		cells := make([]string, len(f.Data[i]))
		for j, v := range f.Data[i] {
			cells[j] = v.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// flatten turns any JSON-encodable value into sorted dotted key/value rows.
func flatten(v any) ([][2]string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	var rows [][2]string
	var walk func(prefix string, node any)
	walk = func(prefix string, node any) {
		switch n := node.(type) {
		case map[string]any:
			keys := make([]string, 0, len(n))
			for k := range n {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(join(prefix, k), n[k])
			}
		case []any:
			for i, e := range n {
				walk(join(prefix, fmt.Sprint(i)), e)
			}
		case nil:
			rows = append(rows, [2]string{prefix, "NaN"})
		default:
			rows = append(rows, [2]string{prefix, fmt.Sprint(n)})
		}
	}
	walk("", tree)
	return rows, nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
