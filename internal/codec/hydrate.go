package codec

import "github.com/mesh-intelligence/nftmeta/pkg/types"

// Hydrate fills the record fields that the blob does not carry from the
// host: animation target and range, and mesh-set member visibility.
// Records whose referents are missing keep their defaults.
func Hydrate(c *types.Container, host types.Host) {
	if host == nil {
		return
	}
	for _, r := range c.Records {
		switch p := r.Payload.(type) {
		case *types.AnimTrait:
			info, ok := host.Animation(r.Name)
			if !ok {
				continue
			}
			p.Object = types.Ref(info.Target)
			p.Start, p.End = info.Start, info.End
			if info.Blending != "" {
				p.Blending = info.Blending
			}
		case *types.MeshSetTrait:
			for i := range p.Entries {
				if name, ok := p.Entries[i].Object.Resolve(host); ok {
					p.Entries[i].Visible = !host.Hidden(name)
				}
			}
		}
	}
}
