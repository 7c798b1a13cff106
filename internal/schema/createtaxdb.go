// Package schema declares the nf-core/createtaxdb parameters and renders them
// for the platform.
package schema

import "github.com/me/createtaxdb/pkg/model"

// Workflow metadata shown by the platform.
const (
	DisplayName = "nf-core/createtaxdb"
	Description = "Sample Description"
)

// CreateTaxDB returns the parameter schema of nf-core/createtaxdb.
// Declaration order is the flag order passed to Nextflow.
func CreateTaxDB() *model.Schema {
	return model.MustSchema(
		model.Param{
			Name:        "input",
			Type:        model.Required(model.KindFile),
			Section:     "Input/output options",
			Description: "Path to comma-separated file containing information about the samples in the experiment.",
		},
		model.Param{
			Name:        "outdir",
			Type:        model.Required(model.KindDirectory),
			Output:      true,
			Description: "The output directory where the results will be saved. You have to use absolute paths to storage on Cloud infrastructure.",
		},
		model.Param{
			Name:        "email",
			Type:        model.Optional(model.KindString),
			Description: "Email address for completion summary.",
		},
		model.Param{
			Name:        "multiqc_title",
			Type:        model.Optional(model.KindString),
			Description: "MultiQC report title. Printed as page header, used for filename if not otherwise specified.",
		},
		model.Param{
			Name:        "dbname",
			Type:        model.Required(model.KindString),
			Description: "Specify name that resulting databases will be prefixed with.",
		},
		model.Param{
			Name:        "accession2taxid",
			Type:        model.Optional(model.KindFile),
			Description: "NCBI-style four-column accession to taxonomy ID map file",
		},
		model.Param{
			Name:        "prot2taxid",
			Type:        model.Optional(model.KindString),
			Description: "Two column protein sequence accession ID to taxonomy map file.",
		},
		model.Param{
			Name:        "nucl2taxid",
			Type:        model.Optional(model.KindFile),
			Description: "Two column nucleotide sequence accession ID to taxonomy map file.",
		},
		model.Param{
			Name:        "nodesdmp",
			Type:        model.Optional(model.KindFile),
			Description: "Path to NCBI-style taxonomy node dmp file.",
		},
		model.Param{
			Name:        "namesdmp",
			Type:        model.Optional(model.KindFile),
			Description: "Path to NCBI-style taxonomy names dmp file.",
		},
		model.Param{
			Name:        "malt_mapdb",
			Type:        model.Optional(model.KindFile),
			Description: "Path to MEGAN6/MALT mapping db file",
		},
		model.Param{
			Name:        "save_concatenated_fastas",
			Type:        model.Optional(model.KindBool),
			Description: "Save concatenated input FASTAs",
		},
		model.Param{
			Name:        "build_bracken",
			Type:        model.Optional(model.KindBool),
			Section:     "Database Building Options",
			Description: "Turn on extending of Kraken2 database to include Bracken files. Requires nucleotide FASTA File input.",
		},
		model.Param{
			Name:        "build_centrifuge",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of Centrifuge database. Requires nucleotide FASTA file input.",
		},
		model.Param{
			Name:        "build_diamond",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of DIAMOND database. Requires amino-acid FASTA file input.",
		},
		model.Param{
			Name:        "build_kaiju",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of Kaiju database. Requires amino-acid FASTA file input.",
		},
		model.Param{
			Name:        "build_malt",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of MALT database. Requires nucleotide FASTA file input.",
		},
		model.Param{
			Name:        "malt_sequencetype",
			Type:        model.Optional(model.KindString),
			Default:     model.String("DNA"),
			Description: "Specify type of input sequence being given to MALT",
		},
		model.Param{
			Name:        "build_kraken2",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of Kraken2 database. Requires nucleotide FASTA file input.",
		},
		model.Param{
			Name:        "kraken2_keepintermediate",
			Type:        model.Optional(model.KindBool),
			Description: "Retain intermediate Kraken2 build files for inspection.",
		},
		model.Param{
			Name:        "build_krakenuniq",
			Type:        model.Optional(model.KindBool),
			Description: "Turn on building of KrakenUniq database. Requires nucleotide FASTA file input.",
		},
		model.Param{
			Name:        "multiqc_methods_description",
			Type:        model.Optional(model.KindString),
			Section:     "Generic options",
			Description: "Custom MultiQC yaml file containing HTML including a methods description.",
		},
	)
}

// Section groups consecutive parameters under one title.
type Section struct {
	Title  string
	Params []model.Param
}

// Sections groups s for rendering. A parameter without a title joins the
// section of the closest preceding titled parameter; parameters before the
// first title land in an untitled section.
func Sections(s *model.Schema) []Section {
	var out []Section
	for _, p := range s.Params() {
		if p.Section != "" || len(out) == 0 {
			out = append(out, Section{Title: p.Section})
		}
		last := &out[len(out)-1]
		last.Params = append(last.Params, p)
	}
	return out
}
