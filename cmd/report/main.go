// Command report renders a PGN file into a printable study sheet: the tag
// pairs, then every main-line move with the position it leads to, one move
// per row, so a game can be annotated away from the screen.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"process_mate/internal/pgn"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: report <game.pgn> [out.pdf]")
		os.Exit(1)
	}
	input := os.Args[1]
	output := "game_report.pdf"
	if len(os.Args) > 2 {
		output = os.Args[2]
	}

	text, err := os.ReadFile(input)
	if err != nil {
		fmt.Println("failed to read pgn:", err)
		os.Exit(1)
	}

	imported, err := pgn.Parse(string(text))
	if err != nil {
		fmt.Println("failed to parse pgn:", err)
		os.Exit(1)
	}

	if err := generatePDF(imported, output); err != nil {
		fmt.Println("failed to create pdf:", err)
		os.Exit(1)
	}

	fmt.Println("report written to:", output)
}

func generatePDF(imported *pgn.Imported, output string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Courier", "", 10)
	pdf.AddPage()

	pdf.Cell(40, 10, gameTitle(imported.Tags))
	pdf.Ln(10)

	for key, value := range imported.Tags {
		pdf.MultiCell(0, 4.5, fmt.Sprintf("[%s \"%s\"]", key, value), "", "L", false)
	}
	pdf.Ln(5)

	for i, move := range imported.Moves {
		number := i/2 + 1
		side := "..."
		if i%2 == 0 {
			side = "."
		}
		line := fmt.Sprintf("%3d%s %-8s %s", number, side, move.SAN, move.FEN)
		pdf.MultiCell(0, 4.5, line, "", "L", false)
	}

	return pdf.OutputFileAndClose(output)
}

func gameTitle(tags map[string]string) string {
	white, black := tags["White"], tags["Black"]
	if white == "" && black == "" {
		return "Game report"
	}
	return strings.TrimSpace(white + " - " + black)
}
