// Package diseases serves the static crop disease dictionary shipped with
// the binary.
package diseases

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// NotFoundMessage is shown when a classifier label has no entry.
const NotFoundMessage = "Doença não encontrada. Por favor, envie uma nova imagem ou tente novamente."

//go:embed diseases.toml
var raw string

// Info is the advice for one label. Non-plant images carry only Message.
type Info struct {
	Identification string `toml:"identificacao" json:"identificacao,omitempty"`
	Prevention     string `toml:"prevencao" json:"prevencao,omitempty"`
	Treatment      string `toml:"tratamento" json:"tratamento,omitempty"`
	Message        string `toml:"mensagem" json:"mensagem,omitempty"`
}

type Dictionary struct {
	entries map[string]Info
}

func Parse(data string) (*Dictionary, error) {
	entries := map[string]Info{}
	if _, err := toml.Decode(data, &entries); err != nil {
		return nil, fmt.Errorf("decode disease dictionary: %w", err)
	}
	return &Dictionary{entries: entries}, nil
}

var (
	defaultOnce sync.Once
	defaultDict *Dictionary
)

// Default returns the embedded dictionary. The file is compiled in, so a
// decode failure is a build defect and panics.
func Default() *Dictionary {
	defaultOnce.Do(func() {
		d, err := Parse(raw)
		if err != nil {
			panic(err)
		}
		defaultDict = d
	})
	return defaultDict
}

// Lookup is case-sensitive.
func (d *Dictionary) Lookup(name string) (Info, bool) {
	info, ok := d.entries[name]
	return info, ok
}

func (d *Dictionary) Names() []string {
	names := make([]string, 0, len(d.entries))
	for n := range d.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
