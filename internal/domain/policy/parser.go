package policy

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ErrConfigLoad wraps every failure to load a policy file. It is fatal at startup.
var ErrConfigLoad = errors.New("policy load failed")

// MaxFileSize caps the size of a policy file.
const MaxFileSize = 1 * 1024 * 1024

// Format identifies a policy file encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// record is a policy entry as written in a file. Flags are integers there.
type record struct {
	Name      string `xml:"name,attr" json:"name" yaml:"name" toml:"name" validate:"required,max=127"`
	App       int32  `xml:"app,attr" json:"app" yaml:"app" toml:"app"`
	Audio     int32  `xml:"audio,attr" json:"audio" yaml:"audio" toml:"audio" validate:"gte=0"`
	Display   int32  `xml:"display,attr" json:"display" yaml:"display" toml:"display" validate:"gte=0"`
	Tuner     int32  `xml:"tuner,attr" json:"tuner" yaml:"tuner" toml:"tuner" validate:"gte=0"`
	Full      int32  `xml:"full,attr" json:"full" yaml:"full" toml:"full" validate:"gte=0"`
	Resume    int32  `xml:"resume,attr" json:"resume" yaml:"resume" toml:"resume" validate:"gte=0"`
	Mixing    int32  `xml:"mixing,attr" json:"mixing" yaml:"mixing" toml:"mixing" validate:"gte=0"`
	Exclusive int32  `xml:"exclusive,attr" json:"exclusive" yaml:"exclusive" toml:"exclusive" validate:"gte=0"`
}

func (r record) entry() Entry {
	return Entry{
		Mode:      r.Name,
		App:       r.App,
		Audio:     r.Audio,
		Display:   r.Display,
		Tuner:     r.Tuner,
		Full:      r.Full != 0,
		Resume:    r.Resume != 0,
		Mixing:    r.Mixing != 0,
		Exclusive: r.Exclusive,
	}
}

type xmlDocument struct {
	XMLName xml.Name `xml:"policies"`
	Modes   []record `xml:"mode"`
}

type document struct {
	Policies []record `json:"policies" yaml:"policies" toml:"policies"`
}

var validate = validator.New()

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported policy file extension %q", ErrConfigLoad, filepath.Ext(path))
	}
}

// Load reads and parses the policy file at path.
func Load(path string) ([]Entry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrConfigLoad, path, info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	entries, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes a policy document in the given format.
func Parse(data []byte, format Format) ([]Entry, error) {
	records, err := decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no mode records", ErrConfigLoad)
	}

	entries := make([]Entry, 0, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: record %d (%q): %v", ErrConfigLoad, i, r.Name, err)
		}
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func decode(data []byte, format Format) ([]record, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty document")
	}

	switch format {
	case FormatXML:
		var doc xmlDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Modes, nil
	case FormatYAML:
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Policies, nil
	case FormatTOML:
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Policies, nil
	case FormatJSON:
		var doc document
		if err := sonic.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Policies, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
