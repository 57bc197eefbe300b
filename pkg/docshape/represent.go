package docshape

import (
	"fmt"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/internal/orderedmap"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
)

// RepresentModel renders model into the canonical map form described in
// §4.2/§4.6: non-default, non-empty fields only, with the root's own name
// never suppressed.
func RepresentModel(model *entity.OntologyModel) (map[string]any, error) {
	out := map[string]any{"name": model.Name}
	putIfSet(out, "label", model.Label)
	putIfSet(out, "description", model.Description)

	if len(model.Imports) > 0 {
		out["imports"] = representImports(model.Imports)
	}

	if model.SchemaDefinitions != nil && model.SchemaDefinitions.Len() > 0 {
		defs := map[string]any{}
		model.SchemaDefinitions.Range(func(k string, v any) bool { defs[k] = v; return true })
		out["schema_definitions"] = defs
	}

	if model.DataTypes != nil && model.DataTypes.Len() > 0 {
		dts := map[string]any{}
		for _, dt := range model.DataTypes.Values() {
			rep, err := representDataType(dt)
			if err != nil {
				return nil, err
			}
			dts[dt.Name] = rep
		}
		out["data_types"] = dts
	}

	if model.VertexTypes != nil && model.VertexTypes.Len() > 0 {
		vts := map[string]any{}
		for _, vt := range model.VertexTypes.Values() {
			rep, err := representInstancable(&vt.Instancable)
			if err != nil {
				return nil, err
			}
			vts[vt.Name] = rep
		}
		out["vertex_types"] = vts
	}

	if model.RelationshipTypes != nil && model.RelationshipTypes.Len() > 0 {
		rts := map[string]any{}
		for _, rt := range model.RelationshipTypes.Values() {
			rep, err := representInstancable(&rt.Instancable)
			if err != nil {
				return nil, err
			}
			if len(rt.ValidSourceTypes) > 0 {
				rep["valid_source_types"] = cellAliases(rt.ValidSourceTypes)
			}
			if len(rt.ValidTargetTypes) > 0 {
				rep["valid_target_types"] = cellAliases(rt.ValidTargetTypes)
			}
			rts[rt.Name] = rep
		}
		out["relationship_types"] = rts
	}

	return out, nil
}

// RepresentOntology is the ontology-document counterpart of RepresentModel.
func RepresentOntology(ont *entity.Ontology) (map[string]any, error) {
	out := map[string]any{"name": ont.Name}
	putIfSet(out, "label", ont.Label)
	putIfSet(out, "description", ont.Description)

	if len(ont.Imports) > 0 {
		out["imports"] = representImports(ont.Imports)
	}

	if ont.Vertices != nil && ont.Vertices.Len() > 0 {
		vs := map[string]any{}
		for _, v := range ont.Vertices.Values() {
			rep, err := representInstance(&v.Instance)
			if err != nil {
				return nil, err
			}
			vs[v.Name] = rep
		}
		out["vertices"] = vs
	}

	if ont.Relationships != nil && ont.Relationships.Len() > 0 {
		rs := map[string]any{}
		for _, r := range ont.Relationships.Values() {
			rep, err := representInstance(&r.Instance)
			if err != nil {
				return nil, err
			}
			rep["source"] = r.Source.Alias
			rep["target"] = r.Target.Alias
			rs[r.Name] = rep
		}
		out["relationships"] = rs
	}

	return out, nil
}

func putIfSet(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func representImports(imports []*entity.ImportDefinition) []any {
	out := make([]any, 0, len(imports))
	for _, imp := range imports {
		if imp.Name == "" {
			out = append(out, imp.File)
			continue
		}
		out = append(out, map[string]any{imp.Name: imp.File})
	}
	return out
}

func cellAliases(cells []*entity.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Alias
	}
	return out
}

func representDataType(dt *entity.DataType) (map[string]any, error) {
	out := map[string]any{}
	putIfSet(out, "label", dt.Label)
	putIfSet(out, "description", dt.Description)
	if dt.DerivedFrom != nil {
		out["derived_from"] = dt.DerivedFrom.Alias
	}
	if len(dt.Constraints) > 0 {
		cs := make([]any, len(dt.Constraints))
		for i, c := range dt.Constraints {
			cs[i] = map[string]any{string(c.Name()): c.Args()}
		}
		out["constraints"] = cs
	}
	if dt.ObjectSchema != nil {
		out["object_schema"] = dt.ObjectSchema
	}
	return out, nil
}

func representInstancable(it *entity.Instancable) (map[string]any, error) {
	out := map[string]any{}
	putIfSet(out, "label", it.Label)
	putIfSet(out, "description", it.Description)
	if it.DerivedFrom != nil {
		out["derived_from"] = it.DerivedFrom.Alias
	}
	if len(it.Metadata) > 0 {
		out["metadata"] = it.Metadata
	}
	if it.Properties != nil && it.Properties.Len() > 0 {
		props := map[string]any{}
		for _, pd := range it.Properties.Values() {
			props[pd.Name] = representPropertyDefinition(pd)
		}
		out["properties"] = props
	}
	if it.Artifacts != nil && it.Artifacts.Len() > 0 {
		arts := map[string]any{}
		for _, ad := range it.Artifacts.Values() {
			arts[ad.Name] = representArtifactDefinition(ad)
		}
		out["artifacts"] = arts
	}
	return out, nil
}

func representPropertyDefinition(pd *entity.PropertyDefinition) map[string]any {
	out := map[string]any{"type": pd.Type.Alias}
	putIfSet(out, "label", pd.Label)
	putIfSet(out, "description", pd.Description)
	if pd.Required {
		out["required"] = true
	}
	if !pd.AllowsMultiple {
		out["allows_multiple"] = false
	}
	if pd.MinAssignments != 0 {
		out["min_assignments"] = pd.MinAssignments
	}
	if pd.MaxAssignments != 0 {
		out["max_assignments"] = pd.MaxAssignments
	}
	// default is emitted even when zero-valued: the one field §4.6 calls
	// out as "include when empty".
	if pd.HasDefault {
		out["default"] = pd.Default
	}
	return out
}

func representArtifactDefinition(ad *entity.ArtifactDefinition) map[string]any {
	out := map[string]any{}
	putIfSet(out, "label", ad.Label)
	putIfSet(out, "description", ad.Description)
	if ad.HasDefaultPath {
		out["default_path"] = ad.DefaultPath
	}
	if ad.MimeType != "application/octet-stream" {
		out["mime_type"] = ad.MimeType
	}
	if ad.Required {
		out["required"] = true
	}
	if !ad.AllowsMultiple {
		out["allows_multiple"] = false
	}
	if ad.MinAssignments != 0 {
		out["min_assignments"] = ad.MinAssignments
	}
	if ad.MaxAssignments != 0 {
		out["max_assignments"] = ad.MaxAssignments
	}
	return out
}

func representInstance(inst *entity.Instance) (map[string]any, error) {
	out := map[string]any{"type": inst.Type.Alias}
	putIfSet(out, "label", inst.Label)
	putIfSet(out, "description", inst.Description)
	if len(inst.Metadata) > 0 {
		out["metadata"] = inst.Metadata
	}

	props, err := groupPropertyAssignments(inst.PropertyAssignments)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		out["properties"] = props
	}

	arts, err := groupArtifactAssignments(inst.ArtifactAssignments)
	if err != nil {
		return nil, err
	}
	if len(arts) > 0 {
		out["artifacts"] = arts
	}

	return out, nil
}

// groupPropertyAssignments renders assignments back into the
// name->value-or-list shorthand, erroring on a duplicate single-valued
// assignment per §4.2.
func groupPropertyAssignments(assignments []*entity.PropertyAssignment) (map[string]any, error) {
	byName := orderedmap.New[[]*entity.PropertyAssignment]()
	for _, pa := range assignments {
		if !pa.Def.Fulfilled() {
			return nil, fmt.Errorf("property assignment %s: reference not fulfilled", pa.Def.Alias)
		}
		name := pa.Def.Alias
		existing, _ := byName.Get(name)
		byName.Set(name, append(existing, pa))
	}

	out := map[string]any{}
	for _, name := range byName.Keys() {
		group, _ := byName.Get(name)
		def := group[0].Def.Value().(*entity.PropertyDefinition)
		if !def.AllowsMultiple && len(group) > 1 {
			return nil, fmt.Errorf("duplicate assignment of single-valued property %q", name)
		}
		if def.AllowsMultiple && len(group) > 1 {
			vals := make([]any, len(group))
			for i, pa := range group {
				vals[i] = pa.Value
			}
			out[name] = vals
		} else {
			out[name] = group[0].Value
		}
	}
	return out, nil
}

// groupArtifactAssignments is the artifact counterpart of
// groupPropertyAssignments.
func groupArtifactAssignments(assignments []*entity.ArtifactAssignment) (map[string]any, error) {
	byName := orderedmap.New[[]*entity.ArtifactAssignment]()
	for _, aa := range assignments {
		if !aa.Def.Fulfilled() {
			return nil, fmt.Errorf("artifact assignment %s: reference not fulfilled", aa.Def.Alias)
		}
		name := aa.Def.Alias
		existing, _ := byName.Get(name)
		byName.Set(name, append(existing, aa))
	}

	out := map[string]any{}
	for _, name := range byName.Keys() {
		group, _ := byName.Get(name)
		def := group[0].Def.Value().(*entity.ArtifactDefinition)
		if !def.AllowsMultiple && len(group) > 1 {
			return nil, fmt.Errorf("duplicate assignment of single-valued artifact %q", name)
		}
		if def.AllowsMultiple && len(group) > 1 {
			paths := make([]any, len(group))
			for i, aa := range group {
				paths[i] = aa.Path
			}
			out[name] = paths
		} else {
			out[name] = group[0].Path
		}
	}
	return out, nil
}
