package orders

const (
	StatusCompleted  = "COMPLETED"
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
)

// NeutralColor is used for PENDING and for any code outside the mapping.
const NeutralColor = "#9CA3AF"

type Badge struct {
	Label string
	Color string
}

var badges = map[string]Badge{
	StatusCompleted:  {Label: "Clôturée", Color: "#22C55E"},
	StatusPending:    {Label: "Non assignée", Color: NeutralColor},
	StatusInProgress: {Label: "En cours", Color: "#60A5FA"},
}

// StatusBadge maps a status code to its label and colour. Unknown codes keep
// the raw code as label.
func StatusBadge(code string) Badge {
	if b, ok := badges[code]; ok {
		return b
	}
	return Badge{Label: code, Color: NeutralColor}
}
