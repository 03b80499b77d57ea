/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

func mock(id, title, artist string, year int, genre Genre) SongCard {
	return SongCard{
		ID:     id,
		Title:  title,
		Artist: artist,
		Year:   year,
		Genre:  genre,
		Source: "mock",
	}
}

var builtin = Catalog{
	mock("mock-001", "Billie Jean", "Michael Jackson", 1982, "pop"),
	mock("mock-002", "Like a Prayer", "Madonna", 1989, "pop"),
	mock("mock-003", "...Baby One More Time", "Britney Spears", 1998, "pop"),
	mock("mock-004", "Wannabe", "Spice Girls", 1996, "pop"),
	mock("mock-005", "Toxic", "Britney Spears", 2003, "pop"),
	mock("mock-006", "Rolling in the Deep", "Adele", 2010, "pop"),
	mock("mock-007", "Shake It Off", "Taylor Swift", 2014, "pop"),
	mock("mock-008", "Blinding Lights", "The Weeknd", 2019, "pop"),
	mock("mock-009", "Dancing Queen", "ABBA", 1976, "pop"),
	mock("mock-010", "Bad Guy", "Billie Eilish", 2019, "pop"),
	mock("mock-011", "Bohemian Rhapsody", "Queen", 1975, "rock"),
	mock("mock-012", "Smells Like Teen Spirit", "Nirvana", 1991, "rock"),
	mock("mock-013", "Hotel California", "Eagles", 1976, "rock"),
	mock("mock-014", "Sweet Child O' Mine", "Guns N' Roses", 1987, "rock"),
	mock("mock-015", "Satisfaction", "The Rolling Stones", 1965, "rock"),
	mock("mock-016", "Back in Black", "AC/DC", 1980, "rock"),
	mock("mock-017", "Livin' on a Prayer", "Bon Jovi", 1986, "rock"),
	mock("mock-018", "Wonderwall", "Oasis", 1995, "rock"),
	mock("mock-019", "Seven Nation Army", "The White Stripes", 2003, "rock"),
	mock("mock-020", "Come Together", "The Beatles", 1969, "rock"),
	mock("mock-021", "Rapper's Delight", "The Sugarhill Gang", 1979, "hip-hop"),
	mock("mock-022", "Juicy", "The Notorious B.I.G.", 1994, "hip-hop"),
	mock("mock-023", "Lose Yourself", "Eminem", 2002, "hip-hop"),
	mock("mock-024", "Hey Ya!", "OutKast", 2003, "hip-hop"),
	mock("mock-025", "HUMBLE.", "Kendrick Lamar", 2017, "hip-hop"),
	mock("mock-026", "Around the World", "Daft Punk", 1997, "electronic"),
	mock("mock-027", "Blue Monday", "New Order", 1983, "electronic"),
	mock("mock-028", "Sandstorm", "Darude", 1999, "electronic"),
	mock("mock-029", "Levels", "Avicii", 2011, "electronic"),
	mock("mock-030", "Titanium", "David Guetta", 2011, "electronic"),
	mock("mock-031", "Oye Como Va", "Santana", 1970, "latin"),
	mock("mock-032", "Livin' la Vida Loca", "Ricky Martin", 1999, "latin"),
	mock("mock-033", "Hips Don't Lie", "Shakira", 2006, "latin"),
	mock("mock-034", "Despacito", "Luis Fonsi", 2017, "latin"),
	mock("mock-035", "No Scrubs", "TLC", 1999, "r&b"),
	mock("mock-036", "Crazy in Love", "Beyoncé", 2003, "r&b"),
	mock("mock-037", "Yeah!", "Usher", 2004, "r&b"),
	mock("mock-038", "Umbrella", "Rihanna", 2007, "r&b"),
	mock("mock-039", "Mr. Brightside", "The Killers", 2003, "indie"),
	mock("mock-040", "Take Me Out", "Franz Ferdinand", 2004, "indie"),
	mock("mock-041", "Do I Wanna Know?", "Arctic Monkeys", 2013, "indie"),
	mock("mock-042", "Pumped Up Kicks", "Foster the People", 2010, "indie"),
	mock("mock-043", "Superstition", "Stevie Wonder", 1972, "funk"),
	mock("mock-044", "Get Up (I Feel Like Being a) Sex Machine", "James Brown", 1970, "funk"),
	mock("mock-045", "Uptown Funk", "Mark Ronson", 2014, "funk"),
	mock("mock-046", "Respect", "Aretha Franklin", 1967, "soul"),
	mock("mock-047", "What's Going On", "Marvin Gaye", 1971, "soul"),
	mock("mock-048", "Let's Stay Together", "Al Green", 1971, "soul"),
}

// Builtin returns a copy of the fixed catalog bundled with the binary.
func Builtin() Catalog {
	out := make(Catalog, len(builtin))
	copy(out, builtin)
	return out
}
