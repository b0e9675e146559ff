package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internal/catalog"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

// Source supplies metric values. *goGate.Engine satisfies it.
type Source interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders a Source on every scrape.
type Exporter struct {
	source Source
}

// New returns an exporter reading from source.
func New(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render returns the exposition text. It is empty when metrics are disabled
// and nothing was dropped.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range catalog.Counters {
		writeCounter(&b, def, snapshot.Counters[def.ID])
	}
	for _, def := range catalog.Histograms {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(&b, def, catalog.Cumulative(raw))
	}
	writeCounter(&b, catalog.AuditDropped, dropped)

	return b.String()
}

func writeHeader(b *strings.Builder, def catalog.Def, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(def.Name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(def.Help))
	b.WriteString("\n# TYPE ")
	b.WriteString(def.Name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeSample(b *strings.Builder, name string, value uint64) {
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeCounter(b *strings.Builder, def catalog.Def, value uint64) {
	writeHeader(b, def, "counter")
	writeSample(b, def.Name, value)
}

func writeHistogram(b *strings.Builder, def catalog.Def, cumulative [len(catalog.Bounds)]uint64) {
	writeHeader(b, def, "histogram")
	for i, le := range catalog.Bounds {
		writeSample(b, def.Name+`_bucket{le="`+le+`"}`, cumulative[i])
	}
	writeSample(b, def.Name+"_count", cumulative[len(cumulative)-1])
	// Durations are bucketed without being summed.
	writeSample(b, def.Name+"_sum", 0)
}

func escapeHelp(help string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(help)
}
