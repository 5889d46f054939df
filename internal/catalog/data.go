package catalog

// Category — категория культур.
type Category struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	NameKey string `json:"nameKey"`
}

// Crop — справочная запись о культуре. Тексты лежат в i18n по ключам crop.<Key>.*.
type Crop struct {
	Key       string `json:"key"`
	Category  string `json:"category"`
	ImageHint string `json:"imageHint"`
	ImageURL  string `json:"imageUrl"`
}

// Scheme — государственная программа поддержки.
type Scheme struct {
	ID             string `json:"id"`
	NameKey        string `json:"nameKey"`
	Type           string `json:"type"`     // Subsidy | Loan
	Category       string `json:"category"` // general | seeds | fertilizer | machinery | irrigation
	State          string `json:"state"`    // "All" — для всей страны
	CropType       string `json:"cropType"` // "All" — для всех культур
	EligibilityKey string `json:"eligibilityKey"`
	BenefitsKey    string `json:"benefitsKey"`
	LastDate       string `json:"lastDate"`
	Link           string `json:"link"`
}

// All — значение фильтра "без ограничения".
const All = "All"

var categories = []Category{
	{Key: "fruits", Label: "Fruits", NameKey: "cropCategory.fruits"},
	{Key: "oilseeds", Label: "Oilseeds", NameKey: "cropCategory.oilseeds"},
	{Key: "cash-crops", Label: "Cash Crops", NameKey: "cropCategory.cashCrops"},
	{Key: "spices", Label: "Spices", NameKey: "cropCategory.spices"},
	{Key: "medicinal", Label: "Medicinal", NameKey: "cropCategory.medicinal"},
	{Key: "cereal", Label: "Cereal", NameKey: "cropCategory.cereal"},
	{Key: "pulses", Label: "Pulses", NameKey: "cropCategory.pulses"},
	{Key: "vegetables", Label: "Vegetables", NameKey: "cropCategory.vegetables"},
}

var crops = []Crop{
	{Key: "mango", Category: "fruits", ImageHint: "ripe mangoes", ImageURL: "https://static.toiimg.com/thumb/msid-100174955,width-400,height-225,resizemode-72/100174955.jpg"},
	{Key: "banana", Category: "fruits", ImageHint: "banana bunch", ImageURL: "https://static.toiimg.com/thumb/msid-89030094,width-400,height-225,resizemode-72/89030094.jpg"},
	{Key: "sunflower", Category: "oilseeds", ImageHint: "sunflower field", ImageURL: "https://images.timesnownews.com/thumb/msid-117393032,thumbsize-1990533,width-400,height-225,resizemode-75/117393032.jpg"},
	{Key: "mustard", Category: "oilseeds", ImageHint: "mustard field", ImageURL: "https://static.toiimg.com/thumb/msid-67766746,width-400,height-225,resizemode-72/67766746.jpg"},
	{Key: "sugarcane", Category: "cash-crops", ImageHint: "sugarcane plantation", ImageURL: "https://static.toiimg.com/thumb/msid-70221808,width-400,height-225,resizemode-72/70221808.jpg"},
	{Key: "cotton", Category: "cash-crops", ImageHint: "cotton plant", ImageURL: "https://static.toiimg.com/thumb/msid-88099376,width-400,height-225,resizemode-72/88099376.jpg"},
	{Key: "turmeric", Category: "spices", ImageHint: "turmeric powder", ImageURL: "https://static.toiimg.com/thumb/msid-111066644,width-400,height-225,resizemode-72/111066644.jpg"},
	{Key: "chilli", Category: "spices", ImageHint: "red chillies", ImageURL: "https://static.toiimg.com/thumb/msid-89422397,width-400,height-225,resizemode-72/89422397.jpg"},
	{Key: "aloe_vera", Category: "medicinal", ImageHint: "aloe vera", ImageURL: "https://images.everydayhealth.com/images/wellness/health-benefits-of-aloe-vera-alt-1440x810.jpg?w=400&h=225"},
	{Key: "tulsi", Category: "medicinal", ImageHint: "tulsi plant", ImageURL: "https://static.toiimg.com/thumb/msid-71041337,width-400,height-225,resizemode-72/71041337.jpg"},
	{Key: "rice", Category: "cereal", ImageHint: "rice paddy", ImageURL: "https://cdn.britannica.com/89/140889-050-EC3F00BF/Ripening-heads-rice-Oryza-sativa.jpg?w=400&h=225&c=crop"},
	{Key: "wheat", Category: "cereal", ImageHint: "wheat field", ImageURL: "https://static.toiimg.com/thumb/msid-118046939,width-400,height-225,resizemode-72/118046939.jpg"},
	{Key: "maize", Category: "cereal", ImageHint: "corn field", ImageURL: "https://static.toiimg.com/thumb/msid-76767236,width-400,height-225,resizemode-72/76767236.jpg"},
	{Key: "lentils", Category: "pulses", ImageHint: "lentil bowl", ImageURL: "https://media.istockphoto.com/id/956458060/photo/close-up-of-lentil-plant.jpg?s=612x612&w=0&k=20&c=984-cZ0i-NJl-7B4WJ1zPcaRbPZAFKHaOlsQdHiNLSc="},
	{Key: "chickpeas", Category: "pulses", ImageHint: "chickpea bowl", ImageURL: "https://media.istockphoto.com/id/638538708/photo/woman-showing-chickpeas-in-close-up.jpg?s=612x612&w=0&k=20&c=ZAZ-5i5KuuteCEOZrrwQ3S30yh-ptUVwZ752-LG90cg="},
	{Key: "tomato", Category: "vegetables", ImageHint: "fresh tomatoes", ImageURL: "https://media.istockphoto.com/id/1545800730/photo/organic-tomato-greenhouse.jpg?s=612x612&w=0&k=20&c=o6QN6XbHKqIEpgTn7bQxNgtIOGe231Nhb-_zxz3LdZI="},
	{Key: "potato", Category: "vegetables", ImageHint: "potato harvest", ImageURL: "https://images.cnbctv18.com/uploads/2025/06/air-potato-2025-06-b12d416f6d12e6995b97351041959f59.jpg?impolicy=website&width=400&height=225"},
	{Key: "onion", Category: "vegetables", ImageHint: "onion bulbs", ImageURL: "https://images.timesnownews.com/thumb/msid-103481351,thumbsize-701145,width-400,height-225,resizemode-75/103481351.jpg"},
}

var schemes = []Scheme{
	{
		ID: "pm-kisan", NameKey: "scheme.pm-kisan.name", Type: "Subsidy", Category: "general",
		State: All, CropType: All,
		EligibilityKey: "scheme.pm-kisan.eligibility", BenefitsKey: "scheme.pm-kisan.benefits",
		LastDate: "2024-12-31", Link: "#",
	},
	{
		ID: "kcc", NameKey: "scheme.kcc.name", Type: "Loan", Category: "general",
		State: All, CropType: All,
		EligibilityKey: "scheme.kcc.eligibility", BenefitsKey: "scheme.kcc.benefits",
		LastDate: "2025-03-31", Link: "#",
	},
	{
		ID: "irrigation-subsidy", NameKey: "scheme.irrigation-subsidy.name", Type: "Subsidy", Category: "irrigation",
		State: "Tamil Nadu", CropType: "Sugarcane",
		EligibilityKey: "scheme.irrigation-subsidy.eligibility", BenefitsKey: "scheme.irrigation-subsidy.benefits",
		LastDate: "2024-10-31", Link: "#",
	},
	{
		ID: "machinery-loan", NameKey: "scheme.machinery-loan.name", Type: "Loan", Category: "machinery",
		State: "Punjab", CropType: "Wheat",
		EligibilityKey: "scheme.machinery-loan.eligibility", BenefitsKey: "scheme.machinery-loan.benefits",
		LastDate: "2024-11-30", Link: "#",
	},
}

// SchemeCategories — ключи категорий программ в порядке отображения.
var SchemeCategories = []string{"general", "seeds", "fertilizer", "machinery", "irrigation"}
