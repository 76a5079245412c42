package introspect

import (
	"sort"
	"strconv"
	"strings"

	binderyv1alpha1 "github.com/bayleafwalker/bindery-graph/api/v1alpha1"
)

// Data is a flat view of parsed metadata, keyed by variable name.
type Data map[string]string

func (d Data) Get(key string) (string, bool) {
	v, ok := d[key]
	return v, ok
}

// Keys returns every variable name, sorted.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setList(d Data, key string, values []string) {
	if len(values) > 0 {
		d[key] = strings.Join(values, " ")
	}
}

// configurationData flattens the global configuration. Free-form variables
// come first so the derived keys always win.
func configurationData(c *binderyv1alpha1.Configuration) Data {
	d := Data{}
	if c == nil {
		return d
	}
	for k, v := range c.Spec.Variables {
		d[k] = v
	}
	for name, pn := range c.Spec.PreferredProviders {
		d["PREFERRED_PROVIDER_"+name] = pn
	}
	for name, pn := range c.Spec.PreferredRuntimeProviders {
		d["PREFERRED_RPROVIDER_"+name] = pn
	}
	for pn, pattern := range c.Spec.PreferredVersions {
		d["PREFERRED_VERSION_"+pn] = pattern
	}
	for _, l := range c.Spec.Layers {
		d["LAYER_PRIORITY_"+l.Name] = strconv.Itoa(l.Priority)
	}
	setList(d, "ASSUME_PROVIDED", c.Spec.AssumeProvided)
	setList(d, "MASKS", c.Spec.Masks)
	return d
}

// recipeData layers a recipe over the global configuration.
func recipeData(file string, r *binderyv1alpha1.Recipe, global Data) Data {
	d := make(Data, len(global)+len(r.Spec.Variables)+10)
	for k, v := range global {
		d[k] = v
	}
	for k, v := range r.Spec.Variables {
		d[k] = v
	}
	d["FILE"] = file
	d["PN"] = r.GetName()
	d["PV"] = r.Spec.Version
	d["DEFAULT_PREFERENCE"] = strconv.Itoa(r.Spec.DefaultPreference)
	d["PROVIDES"] = strings.Join(r.BuildProvides(), " ")
	d["PACKAGES"] = r.GetName()
	setList(d, "PACKAGES", r.Spec.Packages)
	setList(d, "DEPENDS", r.Spec.Depends)
	setList(d, "RPROVIDES", r.Spec.RProvides)
	setList(d, "RDEPENDS", r.Spec.RDepends)
	if r.Spec.Layer != "" {
		d["LAYER"] = r.Spec.Layer
	}
	if r.Spec.SkipReason != "" {
		d["SKIP_REASON"] = r.Spec.SkipReason
	}
	if r.Spec.ExcludeFromWorld {
		d["EXCLUDE_FROM_WORLD"] = "1"
	}
	return d
}
