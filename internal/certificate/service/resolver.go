package service

import (
	templateModels "certserve/internal/template/models"
)

// ResolveFields merges caller data with a template's declared field set into
// the final name->value mapping baked into the artifact.
//
// Precedence, first match wins:
//  1. the explicit field-value mapping supplied by the caller
//  2. top-level payload keys matching a template field name; when activeOnly
//     is set (event-driven issuance) only fields flagged as chosen match
//  3. certificateId, injected last and always overwriting - it is the one
//     field the system, not the caller, controls
//
// A field with no resolvable value maps to the empty string; the renderer
// skips empty values rather than failing the issuance.
func ResolveFields(tpl *templateModels.Template, payload, explicit map[string]string, certificateID string, activeOnly bool) map[string]string {
	resolved := make(map[string]string, len(tpl.Fields)+1)
	for _, field := range tpl.Fields {
		if value, ok := explicit[field.Name]; ok && value != "" {
			resolved[field.Name] = value
			continue
		}
		if activeOnly && !field.IsChosen {
			resolved[field.Name] = ""
			continue
		}
		resolved[field.Name] = payload[field.Name]
	}
	resolved["certificateId"] = certificateID
	return resolved
}
