package table

import (
	"autorisk/domain/table"
	"autorisk/internal/config"
)

// Logical names of the auxiliary tables
const (
	Accidents  = "acidentes_2019"
	Crime      = "seguranca_publica"
	Population = "projecoes_populacao"
)

var policyKeyColumns = []string{"modelo", "ano", "sexo", "regiao_desc", "faixa_desc"}

// DefaultDeclarations returns the five standard tables with locators from cfg
func DefaultDeclarations(cfg config.DataConfig) []table.Declaration {
	return []table.Declaration{
		{
			Name:        PolicyH1,
			Locator:     cfg.PolicyH1Locator,
			Profile:     table.ProfileDelimited,
			Description: "Hull insurance policies, first half of 2019",
			KeyColumns:  policyKeyColumns,
		},
		{
			Name:        PolicyH2,
			Locator:     cfg.PolicyH2Locator,
			Profile:     table.ProfileDelimited,
			Description: "Hull insurance policies, second half of 2019",
			KeyColumns:  policyKeyColumns,
		},
		{
			Name:        Accidents,
			Locator:     cfg.AccidentsLocator,
			Profile:     table.ProfileSemicolonLatin1,
			Description: "Traffic accidents in 2019: causes, types and people involved",
			KeyColumns:  []string{"uf", "causa_acidente", "tipo_acidente", "marca", "ano_fabricacao_veiculo", "sexo", "idade"},
		},
		{
			Name:        Crime,
			Locator:     cfg.CrimeLocator,
			Profile:     table.ProfileCrimeFixed,
			Description: "Vehicle robbery and theft by state (2015-2022)",
			KeyColumns:  []string{"estado", "tipo_crime", "ano", "mes"},
		},
		{
			Name:        Population,
			Locator:     cfg.PopulationLocator,
			Profile:     table.ProfileDelimited,
			Description: "Population projections by age group and state",
			KeyColumns:  []string{"ANO", "SIGLA", "LOCAL"},
		},
	}
}

// RegisterDefaults registers the standard tables, then applies the YAML
// manifest named in cfg, if any
func RegisterDefaults(reg *Registry, cfg config.DataConfig) error {
	for _, decl := range DefaultDeclarations(cfg) {
		if decl.Locator == "" {
			continue
		}
		if err := reg.Register(decl); err != nil {
			return err
		}
	}
	if cfg.Manifest == "" {
		return nil
	}

	decls, err := LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}
	for _, decl := range decls {
		if err := reg.Register(decl); err != nil {
			return err
		}
	}
	return nil
}
