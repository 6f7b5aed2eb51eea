package step

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/placement"
)

// Option configures an export.
type Option func(*exporter)

// WithHeader sets header values. Empty fields keep their defaults.
func WithHeader(h Header) Option {
	return func(x *exporter) { x.header = h.Merge(x.header) }
}

// WithProjectID sets the GlobalId of the project entity. By default a
// random UUID is generated per export.
func WithProjectID(id string) Option {
	return func(x *exporter) { x.projectID = id }
}

// WithProjectName sets the project entity name. By default the name of the
// first Project element is used, then [DefaultProjectName].
func WithProjectName(name string) Option {
	return func(x *exporter) { x.projectName = name }
}

// WithClock sets the time source for the header timestamp. It is ignored
// when the header carries an explicit timestamp.
func WithClock(now func() time.Time) Option {
	return func(x *exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// WithAbsolutePlacement writes resolved absolute coordinates instead of
// local offsets. Elements the resolver cannot reach keep their local
// offsets.
func WithAbsolutePlacement() Option {
	return func(x *exporter) { x.absolute = true }
}

type exporter struct {
	header      Header
	projectID   string
	projectName string
	now         func() time.Time
	absolute    bool
}

// Export writes snap as a STEP exchange file to w. The only error source
// is w itself.
func Export(w io.Writer, snap *model.Snapshot, opts ...Option) error {
	_, err := w.Write(Marshal(snap, opts...))
	return err
}

// Marshal returns snap as a STEP exchange file. A nil snapshot produces a
// file holding only the project entity.
func Marshal(snap *model.Snapshot, opts ...Option) []byte {
	x := &exporter{header: DefaultHeader(), now: time.Now}
	for _, opt := range opts {
		opt(x)
	}
	if snap == nil {
		snap = model.NewSnapshot(nil)
	}

	var buf bytes.Buffer
	x.writeHeader(&buf)
	x.writeData(&buf, snap)
	buf.WriteString("END-ISO-10303-21;\n")
	return buf.Bytes()
}

func (x *exporter) writeHeader(buf *bytes.Buffer) {
	h := x.header
	if h.Timestamp == "" {
		h.Timestamp = x.now().UTC().Format(time.RFC3339)
	}
	buf.WriteString("ISO-10303-21;\n")
	buf.WriteString("HEADER;\n")
	fmt.Fprintf(buf, "FILE_DESCRIPTION((%s), %s);\n", String(h.Description), String(h.Schema))
	fmt.Fprintf(buf, "FILE_NAME(%s, %s, (%s), (%s), %s, %s, %s);\n",
		String(h.FileName), String(h.Timestamp), String(h.Author), String(h.Organization),
		String(h.PreprocessorVersion), String(h.OriginatingSystem), String(h.Authorization))
	fmt.Fprintf(buf, "FILE_SCHEMA((%s));\n", String(h.Schema))
	buf.WriteString("ENDSEC;\n")
}

func (x *exporter) writeData(buf *bytes.Buffer, snap *model.Snapshot) {
	elems := snap.Elements()

	id := x.projectID
	if id == "" {
		id = uuid.NewString()
	}
	buf.WriteString("DATA;\n")
	writeLine(buf, 1, "IFCPROJECT", []string{
		String(id), unset, String(x.resolveProjectName(elems)),
		unset, unset, unset, unset, unset, unset,
	})

	var resolved *placement.Result
	if x.absolute {
		resolved = placement.Resolve(snap)
	}
	for i, e := range elems {
		pos := e.LocalPosition()
		if resolved != nil {
			if abs, ok := resolved.Position(e.ID); ok {
				pos = abs
			}
		}
		ent := newEntity(e, pos)
		t := templateFor(ent.kind)
		writeLine(buf, i+2, t.keyword, t.args(ent))
	}
	buf.WriteString("ENDSEC;\n")
}

func (x *exporter) resolveProjectName(elems []model.Element) string {
	if x.projectName != "" {
		return x.projectName
	}
	for _, e := range elems {
		if e.Kind() != model.KindProject {
			continue
		}
		if n, ok := e.Properties.Name(); ok {
			return n
		}
	}
	return DefaultProjectName
}

func writeLine(buf *bytes.Buffer, handle int, keyword string, args []string) {
	fmt.Fprintf(buf, "#%d=%s(%s);\n", handle, keyword, strings.Join(args, ", "))
}
