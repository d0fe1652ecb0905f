package text

import (
	"fmt"

	"source-resolver/core/format"

	"gopkg.in/yaml.v3"
)

// Register adds the csv, tsv and fwf factories to reg.
func Register(reg *format.Registry) error {
	factories := map[format.Kind]format.Factory{
		format.KindCSV: {
			Decode: func(node *yaml.Node) (format.Descriptor, error) {
				s := DefaultCSV()
				if err := decode(node, &s); err != nil {
					return nil, err
				}
				return s, s.validate()
			},
			New: func(desc format.Descriptor) (format.Handler, error) {
				switch s := desc.(type) {
				case CSV:
					return NewCSV(s)
				case *CSV:
					return NewCSV(*s)
				}
				return nil, unexpected(format.KindCSV, desc)
			},
		},
		format.KindTSV: {
			Decode: func(node *yaml.Node) (format.Descriptor, error) {
				s := DefaultTSV()
				if err := decode(node, &s); err != nil {
					return nil, err
				}
				return s, s.validate()
			},
			New: func(desc format.Descriptor) (format.Handler, error) {
				switch s := desc.(type) {
				case TSV:
					return NewTSV(s)
				case *TSV:
					return NewTSV(*s)
				}
				return nil, unexpected(format.KindTSV, desc)
			},
		},
		format.KindFWF: {
			Decode: func(node *yaml.Node) (format.Descriptor, error) {
				s := DefaultFWF()
				if err := decode(node, &s); err != nil {
					return nil, err
				}
				return s, s.validate()
			},
			New: func(desc format.Descriptor) (format.Handler, error) {
				switch s := desc.(type) {
				case FWF:
					return NewFWF(s)
				case *FWF:
					return NewFWF(*s)
				}
				return nil, unexpected(format.KindFWF, desc)
			},
		},
	}
	for _, kind := range []format.Kind{format.KindCSV, format.KindTSV, format.KindFWF} {
		if err := reg.Register(kind, factories[kind]); err != nil {
			return err
		}
	}
	return nil
}

// decode overlays node on the defaults already held by out.
func decode(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	if err := node.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", format.ErrInvalidDescriptor, err)
	}
	return nil
}

func unexpected(kind format.Kind, desc format.Descriptor) error {
	return fmt.Errorf("%w: %s handler cannot use %T", format.ErrInvalidDescriptor, kind, desc)
}
