package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/topsize/pkg/topsize/types"
)

// YAMLFormatter writes the report as a YAML document with the same fields
// as the json format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *types.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(r)); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func(Options) Formatter { return &YAMLFormatter{} })
}

var _ Formatter = (*YAMLFormatter)(nil)
