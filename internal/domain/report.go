package domain

import "time"

// FilterMode define o tipo de filtro de período.
type FilterMode string

// Modos de filtro.
const (
	ModePeriod  FilterMode = "periodo"
	ModeMonthly FilterMode = "mensal"
)

// AllCompanies é o valor sentinela que desativa o filtro de empresa.
const AllCompanies = "Todas"

// Filter descreve o recorte aplicado à tabela normalizada.
type Filter struct {
	Mode    FilterMode `json:"mode"`
	Start   time.Time  `json:"start,omitempty"`
	End     time.Time  `json:"end,omitempty"`
	Year    int        `json:"year,omitempty"`
	Month   int        `json:"month,omitempty"`
	Company string     `json:"company"`
}

// FilterOptions são os valores disponíveis para montar o filtro.
type FilterOptions struct {
	Companies []string      `json:"companies"`
	Years     []int         `json:"years"`
	Months    map[int][]int `json:"months"`
	MinDate   *time.Time    `json:"min_date"`
	MaxDate   *time.Time    `json:"max_date"`
}

// Summary contém as métricas gerais do período.
type Summary struct {
	Records      int               `json:"records"`
	TotalKm      float64           `json:"total_km"`
	Revenue      float64           `json:"revenue"`
	ExtraCosts   float64           `json:"extra_costs"`
	AvgCostPerKm float64           `json:"avg_cost_per_km"`
	Display      map[string]string `json:"display"`
}

// CategoryTotal é o total de uma categoria de custo extra.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// UserUsage agrega o uso por usuário (preposto ou locatário).
type UserUsage struct {
	User         string             `json:"user"`
	KmRodado     float64            `json:"km_rodado"`
	Costs        map[string]float64 `json:"costs"`
	Reservations int                `json:"reservations"`
}

// MonthCount é a quantidade de aparições em um mês.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// UserCount é a quantidade de locações de um usuário.
type UserCount struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// DayKm é o km rodado somado por dia de retirada.
type DayKm struct {
	Date     string  `json:"date"`
	KmRodado float64 `json:"km_rodado"`
}

// Preview traz as primeiras linhas do arquivo bruto.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// TableView é a tabela filtrada já formatada para exibição.
type TableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Report é o resultado completo do processamento de um arquivo.
type Report struct {
	Title              string          `json:"title"`
	Company            string          `json:"company,omitempty"`
	Filter             Filter          `json:"filter"`
	Options            FilterOptions   `json:"options"`
	Preview            Preview         `json:"preview"`
	Alerts             []Alert         `json:"alerts"`
	Notices            []Notice        `json:"notices"`
	Summary            Summary         `json:"summary"`
	CostColumns        []string        `json:"cost_columns"`
	Categories         []CategoryTotal `json:"categories"`
	ByUser             []UserUsage     `json:"by_user"`
	ByMonth            []MonthCount    `json:"by_month"`
	ReservationsByUser []UserCount     `json:"reservations_by_user"`
	KmByDay            []DayKm         `json:"km_by_day"`
	Table              TableView       `json:"table"`
}
