package plans

// Unlimited marks a resource without a cap.
const Unlimited int64 = -1

type Resource string

const (
	ResourceNotes          Resource = "notes"
	ResourceFolders        Resource = "folders"
	ResourceContacts       Resource = "contacts"
	ResourceContactFolders Resource = "contactFolders"
	ResourceCustomMentions Resource = "customMentions"
)

// Resources lists every counted resource in display order.
var Resources = []Resource{
	ResourceNotes,
	ResourceFolders,
	ResourceContacts,
	ResourceContactFolders,
	ResourceCustomMentions,
}

type Limits struct {
	Counts          map[Resource]int64
	VersionsPerNote int
}

var limitsByPlan = map[Plan]Limits{
	Free: {
		Counts: map[Resource]int64{
			ResourceNotes:          50,
			ResourceFolders:        5,
			ResourceContacts:       25,
			ResourceContactFolders: 3,
			ResourceCustomMentions: 0,
		},
		VersionsPerNote: 5,
	},
	Pro: {
		Counts: map[Resource]int64{
			ResourceNotes:          Unlimited,
			ResourceFolders:        Unlimited,
			ResourceContacts:       Unlimited,
			ResourceContactFolders: Unlimited,
			ResourceCustomMentions: Unlimited,
		},
		VersionsPerNote: 100,
	},
}

func LimitsFor(p Plan) Limits {
	return limitsByPlan[Normalize(string(p))]
}

// Limit returns the cap for r under p; resources missing from the table are
// treated as not allowed.
func Limit(p Plan, r Resource) int64 {
	v, ok := LimitsFor(p).Counts[r]
	if !ok {
		return 0
	}
	return v
}

// Allows reports whether one more r fits when used are already taken.
func Allows(p Plan, r Resource, used int64) bool {
	limit := Limit(p, r)
	if limit == Unlimited {
		return true
	}
	return used < limit
}
