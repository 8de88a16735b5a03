package hwpxfill

// NormalizedBlock is payload content after validation and rendering
// rules have been applied, ready for substitution.
type NormalizedBlock struct {
	Kind  ContentKind
	Text  string
	Lines []OutlineLine
	Rows  []ScheduleEntry
}

// FormatPayload normalizes every payload block against its schema
// entry. A malformed outline in a required field is fatal; in an
// optional field the block is skipped with a warning so the rest of
// the document still renders.
func FormatPayload(payload *Payload, schema *Schema, cfg *Config, warns *Warnings) (map[string]*NormalizedBlock, error) {
	raw := payload.ContentMap()
	blocks := make(map[string]*NormalizedBlock, len(raw))

	for _, spec := range schema.Anchors() {
		block, ok := raw[spec.ID]
		if !ok {
			continue
		}
		switch spec.Kind {
		case KindText:
			blocks[spec.ID] = &NormalizedBlock{Kind: KindText, Text: block.Text}

		case KindOutline:
			opts := FormatOptions{
				MinDetailLines: cfg.MinDetailLines,
				RequireDetail:  spec.RequireDetail,
			}
			lines, err := ParseOutline(spec.ID, block.Lines, opts, warns)
			if err != nil {
				if spec.Required {
					return nil, err
				}
				warns.Add(WarnSkippedBlock, spec.ID, "skipped malformed optional block: %v", err)
				continue
			}
			blocks[spec.ID] = &NormalizedBlock{Kind: KindOutline, Lines: lines}

		case KindSchedule:
			blocks[spec.ID] = &NormalizedBlock{Kind: KindSchedule, Rows: block.Rows}
		}
	}

	// Payload keys with no schema entry surface as warnings here so
	// authors notice typos even when the template never references the
	// identifier.
	for _, id := range sortedKeys(raw) {
		if _, known := schema.Lookup(id); !known {
			warns.Add(WarnUnknownAnchor, id, "payload entry matches no schema identifier")
		}
	}

	return blocks, nil
}
