// Package main содержит multichecker для статического анализа кода проекта.
//
// Состав анализаторов:
//
// 1. Стандартные анализаторы из golang.org/x/tools/go/analysis/passes:
//   - printf: проверяет корректность форматных строк
//   - shadow: обнаруживает затенение переменных
//   - structtag: проверяет корректность тегов структур
//   - unreachable: находит недостижимый код
//   - nilness: проверяет возможные разыменования nil указателей
//   - copylocks: обнаруживает копирование значений с мьютексами
//   - loopclosure: проверяет захват переменных цикла в замыканиях
//   - errorsas: проверяет корректность второго аргумента errors.As
//
// 2. Все анализаторы класса SA из staticcheck.io
//
// 3. Дополнительные анализаторы staticcheck.io:
//   - ST1000: проверяет комментарии пакетов
//   - S1000: предлагает упрощения кода
//
// 4. Публичные анализаторы:
//   - errcheck: проверяет обработку возвращаемых ошибок
//
// 5. Собственный анализатор:
//   - noexit: запрещает прямой вызов os.Exit в функции main пакета main
//
// Использование:
//
//	go run cmd/staticlint/main.go ./...
package main

import (
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/kisielk/errcheck/errcheck"

	"github.com/morozovn/slugmap/cmd/staticlint/noexit"
)

func main() {
	var analyzers []*analysis.Analyzer

	// Стандартные анализаторы
	analyzers = append(analyzers,
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unreachable.Analyzer,
		nilness.Analyzer,
		copylock.Analyzer,
		loopclosure.Analyzer,
		errorsas.Analyzer,
	)

	// Все анализаторы класса SA
	for _, analyzer := range staticcheck.Analyzers {
		analyzers = append(analyzers, analyzer.Analyzer)
	}

	// ST1000 - комментарии пакетов
	for _, analyzer := range stylecheck.Analyzers {
		if analyzer.Analyzer.Name == "ST1000" {
			analyzers = append(analyzers, analyzer.Analyzer)
		}
	}

	// S1000 - упрощения условий
	for _, analyzer := range simple.Analyzers {
		if analyzer.Analyzer.Name == "S1000" {
			analyzers = append(analyzers, analyzer.Analyzer)
		}
	}

	// Публичные анализаторы
	analyzers = append(analyzers, errcheck.Analyzer)

	// Собственный анализатор
	analyzers = append(analyzers, noexit.NoExitAnalyzer)

	multichecker.Main(analyzers...)
}
