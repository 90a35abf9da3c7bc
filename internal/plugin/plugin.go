// Package plugin runs caller-registered text transformers over each input
// line before parsing. Transformers see raw line text and return raw line
// text; they cannot emit events or touch parser state.
package plugin

// Transformer rewrites one line of pre-parse text.
type Transformer interface {
	Name() string
	Transform(line string) string
}

// Func adapts a plain function to the Transformer interface.
type Func struct {
	ID string
	Fn func(string) string
}

func (f Func) Name() string { return f.ID }

func (f Func) Transform(line string) string { return f.Fn(line) }

// Pipeline applies transformers in registration order.
type Pipeline struct {
	transformers []Transformer
}

// Register appends t to the pipeline. Registration order is application
// order; registering after the stream has started affects only later
// lines.
func (p *Pipeline) Register(t Transformer) {
	p.transformers = append(p.transformers, t)
}

// Apply runs every registered transformer over line, feeding each one's
// output to the next.
func (p *Pipeline) Apply(line string) string {
	for _, t := range p.transformers {
		line = t.Transform(line)
	}
	return line
}

// Len reports the number of registered transformers.
func (p *Pipeline) Len() int {
	return len(p.transformers)
}
