// Package risk defines accident, crime, demographic and integrated risk results.
//
// Every sub-query result carries a Found flag. A result with Found=false holds
// only the lookup key, so callers compose them with presence checks.
package risk

import "autorisk/domain/table"

// Level is the three-tier risk label
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// BrandAccidents summarizes accidents of vehicles whose brand matches a query
type BrandAccidents struct {
	Found           bool          `json:"encontrado"`
	Brand           string        `json:"marca"`
	Total           int           `json:"total_acidentes,omitempty"`
	TopCauses       []table.Count `json:"causas_principais,omitempty"`
	TopTypes        []table.Count `json:"tipos_acidentes,omitempty"`
	TopStates       []table.Count `json:"estados_maior_incidencia,omitempty"`
	MeanDriverAge   *float64      `json:"idade_media_condutor,omitempty"`
	DriverSexCounts []table.Count `json:"distribuicao_sexo,omitempty"`
}

// StateAccidents summarizes accidents in one state
type StateAccidents struct {
	Found     bool          `json:"encontrado"`
	UF        string        `json:"uf"`
	StateName string        `json:"nome_estado,omitempty"`
	Total     int           `json:"total_acidentes,omitempty"`
	TopCauses []table.Count `json:"causas_principais,omitempty"`
	TopTypes  []table.Count `json:"tipos_acidentes,omitempty"`
	TopBrands []table.Count `json:"marcas_mais_envolvidas,omitempty"`
}

// TheftStats splits a state's vehicle crimes into robbery and theft
type TheftStats struct {
	Found            bool     `json:"encontrado"`
	State            string   `json:"estado"`
	Year             string   `json:"ano,omitempty"`
	TotalRobberies   int      `json:"total_roubos"`
	TotalThefts      int      `json:"total_furtos"`
	MonthlyRobberies *float64 `json:"media_mensal_roubos,omitempty"`
	MonthlyThefts    *float64 `json:"media_mensal_furtos,omitempty"`
	PeakRobberyMonth string   `json:"mes_maior_roubo,omitempty"`
	PeakTheftMonth   string   `json:"mes_maior_furto,omitempty"`
}

// Total is robberies plus thefts
func (s TheftStats) Total() int {
	return s.TotalRobberies + s.TotalThefts
}

// Demographics is one state's population split for a projection year
type Demographics struct {
	Found        bool    `json:"encontrado"`
	UF           string  `json:"sigla"`
	Year         int     `json:"ano"`
	Locale       string  `json:"local,omitempty"`
	Total        int     `json:"populacao_total,omitempty"`
	Youth        int     `json:"populacao_jovem_15_17,omitempty"`
	YoungAdults  int     `json:"populacao_adulta_18_21,omitempty"`
	Elderly      int     `json:"populacao_idosa_60plus,omitempty"`
	YouthShare   float64 `json:"proporcao_jovens"`
	ElderlyShare float64 `json:"proporcao_idosos"`
}

// Profile combines the sub-queries into a score
type Profile struct {
	Model          string         `json:"modelo"`
	UF             string         `json:"uf"`
	State          string         `json:"estado"`
	Brand          string         `json:"marca"`
	Score          int            `json:"risk_score"`
	Level          Level          `json:"nivel_risco"`
	Recommendation string         `json:"recomendacao"`
	Accidents      BrandAccidents `json:"dados_acidentes"`
	StateAccidents StateAccidents `json:"dados_acidentes_estado"`
	Theft          TheftStats     `json:"dados_seguranca"`
	Demographics   Demographics   `json:"dados_demografia"`

	// Unavailable names the sub-queries whose source table could not be loaded
	Unavailable map[string]string `json:"indisponivel,omitempty"`
}

// BrandComparison contrasts the accident counts of two brands
type BrandComparison struct {
	First              BrandSummary `json:"marca1"`
	Second             BrandSummary `json:"marca2"`
	AbsoluteDifference int          `json:"diferenca_absoluta"`
	RiskierBrand       string       `json:"marca_maior_risco"`
}

// BrandSummary is one side of a BrandComparison
type BrandSummary struct {
	Name      string `json:"nome"`
	Accidents int    `json:"acidentes"`
	TopCause  string `json:"causa_principal,omitempty"`
}

// StateTotal ranks a state by crime volume
type StateTotal struct {
	State string `json:"estado"`
	Total int    `json:"total"`
}

// CrimePoint is one year/crime-type total of a state's evolution
type CrimePoint struct {
	Year      string `json:"ano"`
	CrimeType string `json:"tipo_crime"`
	Total     int    `json:"quantidade"`
}

// AgeShare is one state's youth and elderly shares
type AgeShare struct {
	State        string  `json:"estado"`
	UF           string  `json:"sigla"`
	Total        int     `json:"populacao_total"`
	YouthShare   float64 `json:"prop_jovens"`
	ElderlyShare float64 `json:"prop_idosos"`
}
