package llm

// BuildPropertyJSONSchema returns the extraction schema as a generic map.
// It is embedded in the prompt and used locally to validate model output.
func BuildPropertyJSONSchema() map[string]any {
	harvestClasses := map[string]any{}
	for _, k := range []string{"S1_m3sk", "S2_m3sk", "G1_m3sk", "G2_m3sk", "K1_m3sk", "K2_m3sk"} {
		harvestClasses[k] = nullable("number")
	}

	props := map[string]any{
		"fastighetsbeteckning": nullable("string"),
		"fastighet":            nullable("string"),
		"kommun":               nullable("string"),
		"lage_beskrivning":     nullable("string"),
		"areal_total_ha":       nullable("number"),
		"skogsmark_ha":         nullable("number"),
		"impediment_ha":        nullable("number"),
		"volym_total_m3sk":     nullable("number"),
		"volym_per_ha_m3sk":    nullable("number"),
		"medelalder_ar":        nullable("number"),
		"bonitet":              nullable("number"),
		"tillvaxt_m3sk_per_ar": nullable("number"),
		"huggningsklass":       nullable("string"),
		"huggningsklasser": map[string]any{
			"type":       []string{"object", "null"},
			"properties": harvestClasses,
		},
		"tradslag_andelar": map[string]any{
			"type":       []string{"object", "null"},
			"properties": map[string]any{
				"gran_procent": percentProp(),
				"tall_procent": percentProp(),
				"löv_procent":  percentProp(),
			},
		},
		"byggnader": map[string]any{
			"type":       []string{"object", "null"},
			"properties": map[string]any{
				"finns": nullable("boolean"),
				"typer": map[string]any{
					"type":  []string{"array", "null"},
					"items": map[string]any{"type": "string"},
				},
			},
		},
		"pris_forvantning_sek": nullable("number"),
		"taxeringsvarde_sek":   nullable("number"),
		"koordinater":          nullable("string"),
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"skogsmark_ha", "volym_total_m3sk"},
	}
}

// PropertyFields lists the top level keys the schema accepts.
func PropertyFields() []string {
	props := BuildPropertyJSONSchema()["properties"].(map[string]any)
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	return out
}

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}

func percentProp() map[string]any {
	return map[string]any{
		"type":    []string{"number", "null"},
		"minimum": 0,
		"maximum": 100,
	}
}
