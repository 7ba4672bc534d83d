package progress

type SkillCategory string

const (
	CategoryWingChun  SkillCategory = "wingchun"
	CategoryHack      SkillCategory = "hack"
	CategorySpor      SkillCategory = "spor"
	CategoryKitap     SkillCategory = "kitap"
	CategoryPsikoloji SkillCategory = "psikoloji"
	CategoryIslam     SkillCategory = "islam"
	CategoryOther     SkillCategory = "other"
)

type SkillInfo struct {
	Category SkillCategory `json:"category"`
	Label    string        `json:"label"`
	Ranks    []string      `json:"ranks"`
}

var skills = []SkillInfo{
	{
		Category: CategoryWingChun,
		Label:    "Wing Chun",
		Ranks:    []string{"Çırak", "Savaşçı", "Usta", "Büyük Usta", "Efsanevi Savaşçı", "Ejderha Savaşçısı", "Yüce Ejderha", "Ölümsüz Savaşçı", "Tanrıların Savaşçısı", "Evrenin Koruyucusu"},
	},
	{
		Category: CategoryHack,
		Label:    "Hack & Yazılım",
		Ranks:    []string{"Acemi Kodcu", "Jr. Developer", "Developer", "Sr. Developer", "Lead Developer", "Principal Engineer", "Distinguished Engineer", "Fellow", "Siber Lord", "Dijital Tanrı"},
	},
	{
		Category: CategorySpor,
		Label:    "Spor",
		Ranks:    []string{"Yeni Başlayan", "Amatör", "Yarı-Pro", "Profesyonel", "Elit Atlet", "Ulusal Şampiyon", "Dünya Şampiyonu", "Olimpiyat Madalyalı", "Yaşayan Efsane", "Spor Tanrısı"},
	},
	{
		Category: CategoryKitap,
		Label:    "Kitap Okuma",
		Ranks:    []string{"Okur-Yazar", "Kitap Kurdu", "Hevesli Okur", "Bilge Okur", "Kütüphane Gezgini", "Edebiyat Uzmanı", "Filozof Okur", "Yaşayan Kütüphane", "Bilgelik Ustası", "Evrensel Bilge"},
	},
	{
		Category: CategoryPsikoloji,
		Label:    "Psikoloji",
		Ranks:    []string{"Meraklı Gözlemci", "Empati Ustası", "Zihin Kaşifi", "Davranış Analisti", "İnsan Mühendisi", "Duygu Simyacısı", "Bilinçaltı Profesörü", "Psikolojik Savaşçı", "Zihin Bükücü", "İnsanlığın Psikoloğu"},
	},
	{
		Category: CategoryIslam,
		Label:    "İslam",
		Ranks:    []string{"Mümin", "Salih", "Takva Sahibi", "Alim", "Arif", "Veli", "Kutup", "Gavs", "İnsan-ı Kamil", "Halifetullah"},
	},
	{
		Category: CategoryOther,
		Label:    "Diğer",
	},
}

func (c SkillCategory) IsValid() bool {
	_, ok := SkillByCategory(c)
	return ok
}

// Skills lists every category in display order, "other" last.
func Skills() []SkillInfo {
	out := make([]SkillInfo, len(skills))
	for i, s := range skills {
		s.Ranks = append([]string(nil), s.Ranks...)
		out[i] = s
	}
	return out
}

func SkillByCategory(c SkillCategory) (SkillInfo, bool) {
	for _, s := range skills {
		if s.Category == c {
			return s, true
		}
	}
	return SkillInfo{}, false
}

// RankName returns the display rank for a category, "" for "other" or out-of-range ranks.
func RankName(c SkillCategory, rankIndex int) string {
	s, ok := SkillByCategory(c)
	if !ok || rankIndex < 0 || rankIndex >= len(s.Ranks) {
		return ""
	}
	return s.Ranks[rankIndex]
}

func advanceSkill(sp SkillProgress, rules Rules) SkillProgress {
	sp.CompletedTasks++
	if sp.CompletedTasks >= rules.TasksPerRank {
		if sp.RankIndex < rules.MaxRankIndex {
			sp.RankIndex++
			sp.CompletedTasks = 0
		} else {
			sp.CompletedTasks = rules.TasksPerRank - 1
		}
	}
	return sp
}

func revertSkill(sp SkillProgress, rules Rules) SkillProgress {
	switch {
	case sp.CompletedTasks > 0:
		sp.CompletedTasks--
	case sp.RankIndex > 0:
		sp.RankIndex--
		sp.CompletedTasks = rules.TasksPerRank - 1
	}
	return sp
}
