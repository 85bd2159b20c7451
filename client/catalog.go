package client

// Sound describes one cue for display purposes. The server never interprets
// the catalog; it passes the type id through opaquely. Synthesis happens in
// the browser; the CLI only renders the feed line.
type Sound struct {
	ID    int
	Name  string
	Emoji string
}

var catalog = map[int]Sound{
	1: {ID: 1, Name: "Clap", Emoji: "👏"},
	2: {ID: 2, Name: "Drum", Emoji: "🥁"},
	3: {ID: 3, Name: "Bell", Emoji: "🔔"},
	4: {ID: 4, Name: "Whoosh", Emoji: "💨"},
	5: {ID: 5, Name: "Pop", Emoji: "🎈"},
	6: {ID: 6, Name: "Horn", Emoji: "📯"},
}

// LookupSound returns display info for a sound type.
func LookupSound(id int) (Sound, bool) {
	s, ok := catalog[id]
	return s, ok
}

// Sounds returns the catalog in id order.
func Sounds() []Sound {
	out := make([]Sound, 0, len(catalog))
	for i := 1; i <= len(catalog); i++ {
		if s, ok := catalog[i]; ok {
			out = append(out, s)
		}
	}
	return out
}
