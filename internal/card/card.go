package card

import "strings"

// Card represents a Lotería card
type Card struct {
	Name    string // Display name (e.g., "El Árbol")
	AssetID string // Normalized file-safe ID (e.g., "el_arbol")
}

// catalogNames is the fixed order of the 54 cards
var catalogNames = []string{
	"El Gallo", "El Diablito", "La Dama", "El Catrín", "El Paraguas",
	"La Sirena", "La Escalera", "La Botella", "El Barril", "El Árbol",
	"El Melón", "El Valiente", "El Gorrito", "La Muerte", "La Pera",
	"La Bandera", "El Bandolón", "El Violoncello", "La Garza", "El Pájaro",
	"La Mano", "La Bota", "La Luna", "El Cotorro", "El Borracho",
	"El Negrito", "El Corazón", "La Sandía", "El Tambor", "El Camarón",
	"Las Jaras", "El Músico", "La Araña", "El Soldado", "La Estrella",
	"El Cazo", "El Mundo", "El Apache", "El Nopal", "El Alacrán",
	"La Rosa", "La Calavera", "La Campana", "El Cantarito", "El Venado",
	"El Sol", "La Corona", "La Chalupa", "El Pino", "El Pescado",
	"La Palma", "La Maceta", "El Arpa", "La Rana",
}

// New builds a card from its display name
func New(name string) Card {
	return Card{Name: name, AssetID: Normalize(name)}
}

// Catalog returns a fresh copy of the full catalog in its fixed order
func Catalog() []Card {
	cards := make([]Card, len(catalogNames))
	for i, name := range catalogNames {
		cards[i] = New(name)
	}
	return cards
}

// Find looks a card up in cards by display name or asset ID and returns its
// 1-based position.
func Find(cards []Card, query string) (Card, int, bool) {
	id := Normalize(strings.TrimSpace(query))
	for i, c := range cards {
		if c.AssetID == id {
			return c, i + 1, true
		}
	}
	return Card{}, 0, false
}
