// Package testkit writes a small deterministic copy of the five source
// tables for package tests.
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"autorisk/internal/config"
)

// File names written by WriteFixture
const (
	PolicyH1File   = "casco_tratadoA.csv"
	PolicyH2File   = "casco_tratadoB.csv"
	AccidentsFile  = "acidentes2019.csv"
	CrimeFile      = "seguranca_publica.csv"
	PopulationFile = "projecoes_populacao.csv"
)

// PolicyH1 has two frequency and two indemnity columns; only the first and
// fourth rows carry claims
const PolicyH1 = `modelo,ano,sexo,regiao_desc,faixa_desc,exposicao1,premio1,freq_sin1,indeniz1,freq_sin2,indeniz2
CIVIC,2020,M,Met. de São Paulo,26 a 35 anos,1.0,2500.00,0.05,20000,0.03,10000
CIVIC,2020,F,Met. do Rio de Janeiro,36 a 45 anos,1.0,2300.00,0,0,0,0
CIVIC,2019,M,Grande Campinas,26 a 35 anos,1.0,2100.00,0,0,0,0
COROLLA,2021,F,Met. de São Paulo,46 a 55 anos,1.0,2800.00,0.02,15000,0.02,15000
GOL,2018,M,Demais regiões,18 a 25 anos,1.0,1500.00,0,0,0,0
HB20,2022,F,Met. do Rio de Janeiro,26 a 35 anos,1.0,1900.00,0,0,0,0
`

// PolicyH2 lacks the second claim columns and adds cobertura_extra
const PolicyH2 = `modelo,ano,sexo,regiao_desc,faixa_desc,exposicao1,premio1,freq_sin1,indeniz1,cobertura_extra
CIVIC,2021,M,Met. de São Paulo,26 a 35 anos,1.0,2700.00,0.04,25000,SIM
COROLLA,2021,M,Met. do Rio de Janeiro,26 a 35 anos,1.0,3000.00,0,0,NAO
ONIX,2023,F,Grande Campinas,18 a 25 anos,1.0,1700.00,0,0,NAO
`

// Accidents is written ISO-8859-1 encoded with ';' separators
const Accidents = `id;uf;causa_acidente;tipo_acidente;marca;ano_fabricacao_veiculo;tipo_envolvido;sexo;idade
1;SP;Falta de atenção;Colisão traseira;HONDA/CIVIC;2018;Condutor;Masculino;30
2;SP;Falta de atenção;Colisão traseira;HONDA/CIVIC;2018;Passageiro;Feminino;25
3;RJ;Velocidade incompatível;Saída de pista;HONDA/FIT;2015;Condutor;Feminino;40
4;MG;Falta de atenção;Colisão lateral;TOYOTA/COROLLA;2020;Condutor;Masculino;50
5;SP;Ingestão de álcool;Colisão traseira;HONDA/CIVIC;2019;Condutor;Masculino;NA
6;SP;Velocidade incompatível;Capotamento;VW/GOL;2010;Condutor;Masculino;22
`

// Crime has no header row
const Crime = `São Paulo,Roubo de veículo,2019,janeiro,5000
São Paulo,Roubo de veículo,2019,fevereiro,6500
São Paulo,Furto de veículo,2019,janeiro,3000
São Paulo,Furto de veículo,2019,fevereiro,2500
São Paulo,Roubo de veículo,2018,janeiro,9000
Rio de Janeiro,Roubo de veículo,2019,janeiro,400
Rio de Janeiro,Furto de veículo,2019,março,300
Rio de Janeiro,Roubo de veículo,2019,fevereiro,450
Rio de Janeiro,Furto de veículo,2018,janeiro,100
`

// Population uses ',' thousands separators inside quoted cells. The BR row
// is the national aggregate published alongside the states.
const Population = `ANO,SIGLA,LOCAL,POP_T,15-17_T,18-21_T,60+_T
2025,SP,São Paulo,"46,000,000","1,840,000","2,760,000","7,360,000"
2025,RJ,Rio de Janeiro,"1,000,000","50,000","60,000","200,000"
2025,MG,Minas Gerais,"2,000,000","120,000","140,000","300,000"
2024,SP,São Paulo,"45,000,000","1,800,000","2,700,000","7,000,000"
2025,BR,Brasil,"213,000,000","20,000,000","20,000,000","34,000,000"
`

// Fixture is a directory holding the five tables
type Fixture struct {
	Dir    string
	Config config.DataConfig
}

// WriteFixture writes every table into a fresh temp dir
func WriteFixture(t testing.TB) *Fixture {
	t.Helper()
	dir := t.TempDir()

	latin1, err := charmap.ISO8859_1.NewEncoder().String(Accidents)
	if err != nil {
		t.Fatalf("encode accidents fixture: %v", err)
	}

	files := map[string]string{
		PolicyH1File:   PolicyH1,
		PolicyH2File:   PolicyH2,
		AccidentsFile:  latin1,
		CrimeFile:      Crime,
		PopulationFile: Population,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}

	return &Fixture{
		Dir: dir,
		Config: config.DataConfig{
			Dir:               dir,
			PolicyH1Locator:   PolicyH1File,
			PolicyH2Locator:   PolicyH2File,
			AccidentsLocator:  AccidentsFile,
			CrimeLocator:      CrimeFile,
			PopulationLocator: PopulationFile,
			SourceTimeout:     5 * time.Second,
		},
	}
}

// Remove deletes one fixture file so tests can exercise unavailable sources
func (f *Fixture) Remove(t testing.TB, name string) {
	t.Helper()
	if err := os.Remove(filepath.Join(f.Dir, name)); err != nil {
		t.Fatalf("remove fixture %s: %v", name, err)
	}
}

// Rows counts the data rows of a fixture body
func Rows(body string, header bool) int {
	n := strings.Count(strings.TrimSpace(body), "\n") + 1
	if header {
		n--
	}
	return n
}
