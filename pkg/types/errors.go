package types

import "errors"

// Model and editing errors.
var (
	ErrInvalidTraitType   = errors.New("invalid trait type")
	ErrDuplicateTrait     = errors.New("trait already present")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrTraitMismatch      = errors.New("record holds a different trait type")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrObjectNotFound     = errors.New("object not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrAnimationNotFound  = errors.New("animation not found")
	ErrMorphNotFound      = errors.New("morph not found")
	ErrStagingCollection  = errors.New("the staging collection cannot carry traits")
)
