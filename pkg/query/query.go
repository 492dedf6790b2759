// Package query reads and writes query files: XML records of the prompts
// sent to a language model and the results it returned.
//
// A query file looks like:
//
//	<?xml version="1.0" encoding="utf-8"?>
//	<queries count="2">
//	<query>
//	<info>Inferno Canto 1 1/136</info>
//	<prompt>
//	...
//	</prompt>
//	<result>
//	...
//	</result>
//	</query>
//	</queries>
package query

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/yaklabco/dantetool/pkg/fsutil"
)

// Declaration is the XML declaration written at the top of every file.
const Declaration = `<?xml version="1.0" encoding="utf-8"?>`

// ErrParse indicates a query file that is not well-formed XML.
var ErrParse = errors.New("parse query file")

// Query is one prompt/response record.
type Query struct {
	// Info identifies the source lines, e.g. "Inferno Canto 1 4/136".
	Info string

	// Prompt is the text sent to the model.
	Prompt string

	// Result is the accepted response. Empty when the query failed.
	Result string

	// Error holds a rejected response or an error message.
	Error string

	// Retry marks a prompt that was sent more than once.
	Retry bool
}

// OK reports whether the query has a result.
func (q *Query) OK() bool {
	return q.Result != ""
}

// Fail moves the result into the error slot.
func (q *Query) Fail() {
	q.Error = q.Result
	q.Result = ""
}

// Attr is a root element attribute. Attributes are written in order.
type Attr struct {
	Name  string
	Value string
}

// IntAttr returns an attribute with a decimal value.
func IntAttr(name string, v int) Attr {
	return Attr{Name: name, Value: strconv.Itoa(v)}
}

// CountAttr returns the conventional count attribute for qs.
func CountAttr(qs []Query) Attr {
	return IntAttr("count", len(qs))
}

//nolint:gochecknoglobals // Compiled once.
var queryExpr = xpath.MustCompile("//query")

// Parse reads all query elements from r, in document order.
func Parse(r io.Reader) ([]Query, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	nodes := xmlquery.QuerySelectorAll(doc, queryExpr)
	qs := make([]Query, 0, len(nodes))
	for _, n := range nodes {
		q := Query{
			Info:   childText(n, "info"),
			Prompt: childText(n, "prompt"),
			Result: childText(n, "result"),
			Error:  childText(n, "error"),
		}
		if p := n.SelectElement("prompt"); p != nil {
			q.Retry = p.SelectAttr("retry") == "true"
		}
		qs = append(qs, q)
	}

	return qs, nil
}

func childText(n *xmlquery.Node, name string) string {
	child := n.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}

// Read parses the query file at path.
func Read(ctx context.Context, path string) ([]Query, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	qs, err := Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}

// Exists reports whether a query file exists at path.
func Exists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

//nolint:gochecknoglobals // Stateless replacers.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Encode writes qs as a query file. Newlines in text are kept literally so
// tables stay readable in the file.
func Encode(w io.Writer, qs []Query, attrs ...Attr) error {
	var b strings.Builder

	b.WriteString(Declaration)
	b.WriteString("\n<queries")
	for _, a := range attrs {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, attrEscaper.Replace(a.Value))
	}
	b.WriteString(">\n")

	for i := range qs {
		encodeQuery(&b, &qs[i])
	}
	b.WriteString("</queries>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func encodeQuery(b *strings.Builder, q *Query) {
	b.WriteString("<query>\n")
	if q.Info != "" {
		fmt.Fprintf(b, "<info>%s</info>\n", textEscaper.Replace(q.Info))
	}

	if q.Retry {
		b.WriteString(`<prompt retry="true">`)
	} else {
		b.WriteString("<prompt>")
	}
	fmt.Fprintf(b, "\n%s\n</prompt>\n", textEscaper.Replace(q.Prompt))

	if q.Error != "" {
		if q.Result != "" {
			b.WriteString(`<error result="true">`)
		} else {
			b.WriteString("<error>")
		}
		fmt.Fprintf(b, "\n%s\n</error>\n", textEscaper.Replace(q.Error))
	}
	if q.Result != "" {
		fmt.Fprintf(b, "<result>\n%s\n</result>\n", textEscaper.Replace(q.Result))
	}
	b.WriteString("</query>\n")
}

// Write encodes qs and replaces the file at path atomically.
func Write(ctx context.Context, path string, qs []Query, attrs ...Attr) error {
	var buf bytes.Buffer
	if err := Encode(&buf, qs, attrs...); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := fsutil.WriteAtomic(ctx, path, buf.Bytes(), 0); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
