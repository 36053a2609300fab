package card

import "strings"

// AssetExt is the file extension of card art
const AssetExt = ".jpg"

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n",
	" ", "_",
)

// Normalize maps a display name to the identifier used for its asset file.
// Only the fixed accent table is folded; anything else passes through lowercased.
func Normalize(name string) string {
	return accentReplacer.Replace(strings.ToLower(name))
}

// AssetPath joins the image directory prefix with the asset file name.
// The prefix is used verbatim so it may be a directory ("images/") or a URL base.
func AssetPath(dir, assetID string) string {
	return dir + assetID + AssetExt
}
