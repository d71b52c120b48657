package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schemaSource constrains every value a bfi.toml may hold.
const schemaSource = `
#Manifest: {
	run: {
		tier:               "scan" | "jump" | "folded" | "simple" | "optimized" | "0" | "1" | "2"
		pointer:            "fault" | "wrap"
		eof:                "error" | "zero" | "unchanged"
		"trailing-newline": bool
	}
	cache: {
		path: string
	}
	log: {
		verbosity: int & >=-4 & <=5
	}
}
`

func loadSchema() (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("bfi.cue"))
	if err := v.Err(); err != nil {
		return nil, cue.Value{}, fmt.Errorf("compile manifest schema: %w", err)
	}
	return ctx, v.LookupPath(cue.ParsePath("#Manifest")), nil
}

// Validate checks the manifest against the embedded CUE schema.
func (m *Manifest) Validate() error {
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}
	v := ctx.Encode(m)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
