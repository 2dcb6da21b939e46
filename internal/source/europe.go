package source

import "strings"

var europeCountries = []string{
	"albania", "andorra", "armenia", "austria", "azerbaijan", "belarus",
	"belgium", "bosnia and herzegovina", "bulgaria", "croatia", "cyprus",
	"czech republic", "denmark", "estonia", "finland", "france",
	"georgia", "germany", "greece", "hungary", "iceland", "ireland",
	"italy", "kosovo", "latvia", "liechtenstein", "lithuania",
	"luxembourg", "malta", "moldova", "monaco", "montenegro",
	"netherlands", "north macedonia", "norway", "poland", "portugal",
	"romania", "san marino", "serbia", "slovakia", "slovenia", "spain",
	"sweden", "switzerland", "ukraine", "united kingdom", "vatican city",
}

// isEuropeCountry matches whole country names inside free-form
// headquarters text ("Paris, France" matches; "Francetown" does not).
func isEuropeCountry(text string) bool {
	normalized := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	if normalized == "  " {
		return false
	}
	for _, country := range europeCountries {
		if strings.Contains(normalized, " "+country+" ") {
			return true
		}
	}
	return false
}
