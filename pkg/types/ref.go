package types

// ObjectRef is a weak reference to a host object. Name is the portable link
// across the serialization boundary; ID is the identifier carried in the
// interchange file and is used when the name no longer resolves.
type ObjectRef struct {
	Name string
	ID   string
}

// Ref returns an ObjectRef naming the given object.
func Ref(name string) ObjectRef {
	return ObjectRef{Name: name}
}

// IsZero reports whether the reference names nothing.
func (r ObjectRef) IsZero() bool {
	return r.Name == "" && r.ID == ""
}

// Resolve looks the referent up in objs, by name first and then by ID.
// Returns the current object name and true, or "" and false when the
// referent is gone.
func (r ObjectRef) Resolve(objs Objects) (string, bool) {
	if objs == nil {
		return "", false
	}
	if r.Name != "" && objs.HasObject(r.Name) {
		return r.Name, true
	}
	if r.ID != "" {
		return objs.FindObjectByID(r.ID)
	}
	return "", false
}

// MaterialRef is a weak reference to a host material by name.
type MaterialRef struct {
	Name string
}

// IsZero reports whether the reference names nothing.
func (r MaterialRef) IsZero() bool {
	return r.Name == ""
}

// Resolve looks the material up in mats.
func (r MaterialRef) Resolve(mats Materials) (MaterialInfo, bool) {
	if mats == nil || r.Name == "" {
		return MaterialInfo{}, false
	}
	return mats.Material(r.Name)
}
