package gltfio

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

// The glTF JSON shapes read by the loader. Going through JSON keeps the
// loader independent of the index and float types of the gltf package.

type nodeJSON struct {
	Name    string    `json:"name"`
	Mesh    *int      `json:"mesh"`
	Camera  *int      `json:"camera"`
	Weights []float64 `json:"weights"`
}

type meshJSON struct {
	Name    string    `json:"name"`
	Weights []float64 `json:"weights"`
	Extras  struct {
		TargetNames []string `json:"targetNames"`
	} `json:"extras"`
}

type materialJSON struct {
	Name string `json:"name"`
	PBR  *struct {
		BaseColorFactor *[4]float64 `json:"baseColorFactor"`
		MetallicFactor  *float64    `json:"metallicFactor"`
		RoughnessFactor *float64    `json:"roughnessFactor"`
	} `json:"pbrMetallicRoughness"`
	EmissiveFactor *[3]float64 `json:"emissiveFactor"`
}

type animationJSON struct {
	Name     string `json:"name"`
	Channels []struct {
		Sampler int `json:"sampler"`
		Target  struct {
			Node *int   `json:"node"`
			Path string `json:"path"`
		} `json:"target"`
	} `json:"channels"`
	Samplers []struct {
		Input int `json:"input"`
	} `json:"samplers"`
}

type accessorJSON struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// reencode copies v into out through its JSON form.
func reencode(v, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// extension decodes exts[name] into out and reports whether it was there.
func extension(exts gltf.Extensions, name string, out any) (bool, error) {
	v, ok := exts[name]
	if !ok || v == nil {
		return false, nil
	}
	return true, reencode(v, out)
}

// stringsOf returns the string elements of a []string or []any.
func stringsOf(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, _ := e.(string)
			out = append(out, s)
		}
		return out
	}
	return nil
}
