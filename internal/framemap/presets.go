package framemap

import "fmt"

// DefaultPrefix is where the exported frames live relative to the asset root.
const DefaultPrefix = "sequence-master/ezgif-frame"

// Master is the 300-frame cut: four sections, a fade buffer of 10.
func Master() *Sequence {
	return &Sequence{
		TotalFrames: 300,
		FadeBuffer:  10,
		Prefix:      DefaultPrefix,
		Encoding:    EncodingPNG,
		Sections: []Section{
			{Key: "hero", Start: 0, End: 69},
			{Key: "about", Start: 70, End: 154},
			{Key: "advantages", Start: 155, End: 209},
			{Key: "global", Start: 210, End: 299},
		},
	}
}

// Extended is the 345-frame cut with the fleet section and a trailing
// advantages sequence. Sections are back to back, so neighbours crossfade
// through the fade buffer.
func Extended() *Sequence {
	return &Sequence{
		TotalFrames: 345,
		FadeBuffer:  10,
		Prefix:      DefaultPrefix,
		Encoding:    EncodingWebP,
		Sections: []Section{
			{Key: "hero", Start: 0, End: 74},
			{Key: "about", Start: 75, End: 149},
			{Key: "fleet", Start: 150, End: 224},
			{Key: "global", Start: 225, End: 299},
			{Key: "advantages", Start: 300, End: 344},
		},
	}
}

// Preset returns a built-in sequence by name.
func Preset(name string) (*Sequence, error) {
	switch name {
	case "master", "":
		return Master(), nil
	case "extended":
		return Extended(), nil
	default:
		return nil, fmt.Errorf("unknown sequence preset: %s", name)
	}
}
