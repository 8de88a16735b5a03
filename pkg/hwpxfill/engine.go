package hwpxfill

import (
	"fmt"

	"github.com/sunghoonbaek/go-hwpxfill/pkg/hwpxfill/hml"
)

// GenerateOptions configures one generation run. Payload and Schema
// may be supplied directly; otherwise DataPath and the configured
// schema are loaded.
type GenerateOptions struct {
	TemplatePath string
	OutputPath   string
	DataPath     string

	Payload *Payload
	Schema  *Schema
	Config  *Config
}

// Result reports a successful generation run.
type Result struct {
	OutputPath string
	Warnings   []Warning
}

// Generate fills the template at TemplatePath from the payload and
// writes the finished package to OutputPath. On any fatal error no
// output file is produced; non-fatal findings come back as warnings.
func Generate(opts GenerateOptions) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = GetGlobalConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := GetLogger().WithFields(Fields{
		"template": opts.TemplatePath,
		"output":   opts.OutputPath,
	})

	schema := opts.Schema
	if schema == nil {
		if cfg.SchemaPath != "" {
			loaded, err := LoadSchema(cfg.SchemaPath)
			if err != nil {
				return nil, err
			}
			schema = loaded
		} else {
			schema = DefaultSchema()
		}
	}

	payload := opts.Payload
	if payload == nil {
		loaded, err := LoadPayload(opts.DataPath)
		if err != nil {
			return nil, err
		}
		payload = loaded
	} else {
		payload.normalize()
		if err := payload.Validate(); err != nil {
			return nil, err
		}
	}
	spec := payload.ScheduleSpec()
	log.Debug("payload accepted: %d years, stage %d", spec.TotalYears, spec.Stage)

	pkg, err := Open(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	warns := &Warnings{}
	blocks, err := FormatPayload(payload, schema, cfg, warns)
	if err != nil {
		return nil, err
	}

	for _, part := range pkg.SectionParts() {
		member, _ := pkg.Member(part)
		root, err := hml.Parse(member.Data)
		if err != nil {
			return nil, NewCorruptArchiveError(pkg.Path(), "body part "+part+" is not well-formed XML", err)
		}

		if err := fillSection(root, part, spec, schema, blocks, cfg, warns); err != nil {
			return nil, err
		}

		if err := pkg.SetPart(part, hml.Serialize(root)); err != nil {
			return nil, err
		}
		log.Debug("filled body part %s", part)
	}

	if err := pkg.WriteFile(opts.OutputPath); err != nil {
		return nil, err
	}
	for _, w := range warns.List() {
		log.Warn("%s", w)
	}
	log.Info("wrote %s with %d warnings", opts.OutputPath, warns.Len())

	return &Result{OutputPath: opts.OutputPath, Warnings: warns.List()}, nil
}

// fillSection runs the per-part pipeline: prune year sections, expand
// schedule tables, index anchors, substitute content, fix year labels.
func fillSection(root *hml.Node, part string, spec ScheduleSpec, schema *Schema, blocks map[string]*NormalizedBlock, cfg *Config, warns *Warnings) error {
	if err := PruneYearSections(root, part, spec.TotalYears); err != nil {
		return err
	}
	if err := ExpandSchedules(root, part, spec, schema, warns); err != nil {
		return err
	}
	idx, err := IndexPlaceholders(root, part, schema, cfg.StrictMode, warns)
	if err != nil {
		return err
	}
	if err := Substitute(root, part, idx, blocks, cfg.StrictMode, warns); err != nil {
		return err
	}
	FixYearLabels(root, spec.TotalYears, spec.Stage)
	return nil
}
