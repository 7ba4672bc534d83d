package progress

// ReportAction is a self-reported behavior that drains a vital.
type ReportAction struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Stat        Stat   `json:"stat" yaml:"stat"`
	Impact      int    `json:"impact" yaml:"impact"`
}

// ItemEffect restores a vital when an item is used. Amount 0 means the item has no direct effect.
type ItemEffect struct {
	Stat   Stat `json:"stat,omitempty" yaml:"stat,omitempty"`
	Amount int  `json:"amount,omitempty" yaml:"amount,omitempty"`
}

type ShopItem struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Price       int        `json:"price" yaml:"price"`
	Effect      ItemEffect `json:"effect" yaml:"effect"`
}

// Catalog is the static content the transitions look items and actions up in.
type Catalog struct {
	Reports []ReportAction `json:"reports" yaml:"reports"`
	Items   []ShopItem     `json:"items" yaml:"items"`
}

const (
	ItemPotionEnergy = "potion_energy"
	ItemPotionMind   = "potion_mind"
	ItemScrollCinema = "scroll_cinema"
	ItemBookWisdom   = "book_wisdom"
)

func DefaultCatalog() Catalog {
	return Catalog{
		Reports: []ReportAction{
			{ID: "hp_sleep", Title: "Yetersiz Uyku", Description: "Gece yeterince dinlenemedin.", Stat: StatHP, Impact: -6},
			{ID: "hp_food", Title: "Kötü Beslenme", Description: "İşlenmiş gıda veya abur cubur tükettin.", Stat: StatHP, Impact: -3},
			{ID: "hp_profanity", Title: "Küfür Etmek", Description: "Ağızdan çıkan kötü sözler ruhsal enerjiyi tüketir.", Stat: StatHP, Impact: -3},
			{ID: "mp_work", Title: "Odaklı Çalışma", Description: "En az 30 dakika dikkat dağılmadan çalıştın.", Stat: StatMP, Impact: -10},
			{ID: "mp_social", Title: "Amaçsız Dolaşma", Description: "Sosyal medyada en az 5 dakika amaçsızca gezindin.", Stat: StatMP, Impact: -40},
		},
		Items: []ShopItem{
			{ID: ItemPotionEnergy, Name: "Enerji İksiri", Description: "Anında %10 HP yeniler.", Price: 100, Effect: ItemEffect{Stat: StatHP, Amount: 10}},
			{ID: ItemPotionMind, Name: "Zihin Kristali", Description: "%15 MP yeniler.", Price: 120, Effect: ItemEffect{Stat: StatMP, Amount: 15}},
			{ID: ItemScrollCinema, Name: "Gölge Sineması", Description: "20 dakikalık bir film, dizi veya video izle.", Price: 250},
			{ID: ItemBookWisdom, Name: "Bilgelik Tomarı", Description: "25 dakika boyunca kendini geliştirecek bir kitap oku.", Price: 300},
		},
	}
}

func (c Catalog) Report(id string) (ReportAction, bool) {
	for _, r := range c.Reports {
		if r.ID == id {
			return r, true
		}
	}
	return ReportAction{}, false
}

func (c Catalog) Item(id string) (ShopItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}
