package model

// CategoryOrder keeps the taxonomy in display order for the picker.
var CategoryOrder = []string{
	"IT & Networking",
	"Design",
	"Legal",
	"Marketing",
	"Writing",
}

// Categories maps each contract category to its specific roles.
var Categories = map[string][]string{
	"IT & Networking": {"Database Administration", "DevOps", "Network Security", "Software Development", "System Administration"},
	"Design":          {"Graphic Design", "UI/UX Design", "Web Design", "Brand Identity", "Illustration"},
	"Legal":           {"Contract Law", "Corporate Law", "Intellectual Property", "Compliance", "Litigation"},
	"Marketing":       {"Digital Marketing", "Content Marketing", "SEO", "Social Media", "Brand Strategy"},
	"Writing":         {"Content Writing", "Copywriting", "Technical Writing", "Blog Writing", "Editing"},
}

// ValidCategory reports whether name is a known category.
func ValidCategory(name string) bool {
	_, ok := Categories[name]
	return ok
}

// ValidSubcategory reports whether sub belongs to category. An empty
// subcategory is always valid; it is optional in the wizard.
func ValidSubcategory(category, sub string) bool {
	if sub == "" {
		return true
	}
	for _, s := range Categories[category] {
		if s == sub {
			return true
		}
	}
	return false
}

// Countries offered on the registration form.
var Countries = []string{
	"United States", "United Kingdom", "Canada", "Australia", "Germany",
	"France", "India", "China", "Japan", "Brazil", "Mexico", "Spain",
	"Italy", "Netherlands", "Sweden", "Switzerland", "Singapore",
	"South Africa", "Nigeria", "Kenya", "Other",
}
