package services

import (
	"strconv"
	"strings"

	types "github.com/yungbote/materials-backend/internal/domain"
)

const (
	databaseBanner      = "#HybriD³ Materials Database\n"
	databaseBannerASCII = "#HybriD3 Materials Database\n"
	missingAposLine     = "#-Atomic Positions input file not available-"
)

// entryHeader is the provenance block written at the top of every legacy
// entry download. It is rebuilt from the loaded rows on each request.
type entryHeader struct {
	Compound    string
	Temperature string
	Phase       string
	Journal     string
	DOI         string
	Authors     []types.Author
}

func headerOf(sys *types.System, phase *types.Phase, pub *types.Publication, temperature string) entryHeader {
	h := entryHeader{Temperature: temperature}
	if sys != nil {
		h.Compound = sys.CompoundName
	}
	if phase != nil {
		h.Phase = phase.Phase
	}
	if pub != nil {
		h.Journal = pub.Journal
		h.DOI = pub.DOIISBN
		h.Authors = pub.Authors
	}
	return h
}

type headerStyle struct {
	banner     bool
	systemLine bool
}

// writeDownloadHeader renders the header of text downloads: temperature in
// kelvin, counted authors and "N/A" for a missing source.
func writeDownloadHeader(b *strings.Builder, h entryHeader, style headerStyle) {
	if style.banner {
		b.WriteString(databaseBanner)
	}
	if style.systemLine {
		b.WriteString("\n#System: ")
		b.WriteString(h.Compound)
	}
	b.WriteString("\n#Temperature: ")
	b.WriteString(h.Temperature + " K")
	b.WriteString("\n#Phase: ")
	b.WriteString(h.Phase)
	b.WriteString("\n#Authors (" + strconv.Itoa(len(h.Authors)) + "): ")
	writeAuthors(b, h.Authors)
	b.WriteString("\n#Journal: ")
	b.WriteString(h.Journal)
	b.WriteString("\n#Source: ")
	if h.DOI != "" {
		b.WriteString(h.DOI)
	} else {
		b.WriteString("N/A")
	}
}

// writeMetaHeader renders the header placed in archive metadata files and
// synthesis downloads: raw temperature and source, uncounted authors.
func writeMetaHeader(b *strings.Builder, banner string, h entryHeader) {
	b.WriteString(banner)
	b.WriteString("\n#System: ")
	b.WriteString(h.Compound)
	b.WriteString("\n#Temperature: ")
	b.WriteString(h.Temperature)
	b.WriteString("\n#Phase: ")
	b.WriteString(h.Phase)
	b.WriteString("\n#Authors: ")
	writeAuthors(b, h.Authors)
	b.WriteString("\n#Journal: ")
	b.WriteString(h.Journal)
	b.WriteString("\n#Source: ")
	b.WriteString(h.DOI)
}

func writeAuthors(b *strings.Builder, authors []types.Author) {
	for _, a := range authors {
		b.WriteString("\n    ")
		b.WriteString(a.FirstName + " ")
		b.WriteString(a.LastName)
		b.WriteString(", " + a.Institution)
	}
}

func writeLattice(b *strings.Builder, ap *types.AtomicPositions) {
	for _, kv := range [][2]string{
		{"a", ap.A}, {"b", ap.B}, {"c", ap.C},
		{"alpha", ap.Alpha}, {"beta", ap.Beta}, {"gamma", ap.Gamma},
	} {
		b.WriteString("\n#" + kv[0] + ": ")
		b.WriteString(kv[1])
	}
	b.WriteString("\n\n")
}

// writeSystemBanner frames the system name for the all-entries download.
func writeSystemBanner(b *strings.Builder, name string) {
	rule := strings.Repeat("#", len(name)+22)
	b.WriteString(databaseBanner + "\n")
	b.WriteString(rule + "\n")
	b.WriteString("#####  System: " + name + "  #####\n#")
	b.WriteString(rule + "\n")
}

func writeSynthesisSections(b *strings.Builder, syn *types.SynthesisMethodOld) {
	sections := [][2]string{
		{"Synthesis Method", syn.SynthesisMethod},
		{"Starting Materials", syn.StartingMaterials},
		{"Remarks", syn.Remarks},
		{"Product", syn.Product},
	}
	for _, s := range sections {
		if s[1] == "" {
			continue
		}
		b.WriteString("\n#" + s[0] + ": ")
		b.WriteString(s[1])
	}
}

func writeBandGap(b *strings.Builder, gap string) {
	b.WriteString(databaseBanner + "\n")
	b.WriteString("****************\n")
	b.WriteString("Band gap: ")
	if gap != "" {
		b.WriteString(gap + " eV")
	} else {
		b.WriteString("N/A")
	}
	b.WriteString("\n****************\n")
}
