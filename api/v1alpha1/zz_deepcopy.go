package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"
)

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *RecipeSpec) DeepCopyInto(out *RecipeSpec) {
	*out = *in
	out.Provides = copyStrings(in.Provides)
	out.Depends = copyStrings(in.Depends)
	out.Packages = copyStrings(in.Packages)
	out.RProvides = copyStrings(in.RProvides)
	out.RDepends = copyStrings(in.RDepends)
	out.Variables = copyStringMap(in.Variables)
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *Recipe) DeepCopyInto(out *Recipe) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
}

// DeepCopy copies the receiver, creating a new Recipe.
func (in *Recipe) DeepCopy() *Recipe {
	if in == nil {
		return nil
	}
	out := new(Recipe)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *Recipe) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *RecipeAppend) DeepCopyInto(out *RecipeAppend) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec.Provides = copyStrings(in.Spec.Provides)
	out.Spec.Depends = copyStrings(in.Spec.Depends)
	out.Spec.RProvides = copyStrings(in.Spec.RProvides)
	out.Spec.RDepends = copyStrings(in.Spec.RDepends)
	out.Spec.Variables = copyStringMap(in.Spec.Variables)
}

// DeepCopy copies the receiver, creating a new RecipeAppend.
func (in *RecipeAppend) DeepCopy() *RecipeAppend {
	if in == nil {
		return nil
	}
	out := new(RecipeAppend)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *RecipeAppend) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *Configuration) DeepCopyInto(out *Configuration) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec.PreferredProviders = copyStringMap(in.Spec.PreferredProviders)
	out.Spec.PreferredRuntimeProviders = copyStringMap(in.Spec.PreferredRuntimeProviders)
	out.Spec.PreferredVersions = copyStringMap(in.Spec.PreferredVersions)
	out.Spec.AssumeProvided = copyStrings(in.Spec.AssumeProvided)
	out.Spec.Masks = copyStrings(in.Spec.Masks)
	if in.Spec.Layers != nil {
		out.Spec.Layers = make([]LayerRef, len(in.Spec.Layers))
		copy(out.Spec.Layers, in.Spec.Layers)
	}
	out.Spec.Variables = copyStringMap(in.Spec.Variables)
}

// DeepCopy copies the receiver, creating a new Configuration.
func (in *Configuration) DeepCopy() *Configuration {
	if in == nil {
		return nil
	}
	out := new(Configuration)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *Configuration) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
