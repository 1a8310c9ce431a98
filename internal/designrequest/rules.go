package designrequest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/uniformhub/gateway/pkg/enums"
)

// Field names a validated input of a garment piece.
type Field string

const (
	FieldBottomType         Field = "bottom_type"
	FieldFabric             Field = "fabric"
	FieldLogoPosition       Field = "logo_position"
	FieldLogoHeight         Field = "logo_height"
	FieldLogoWidth          Field = "logo_width"
	FieldFrontDesign        Field = "front_design"
	FieldBackDesign         Field = "back_design"
	FieldAttachingTechnique Field = "attaching_technique"
	FieldButtonQuantity     Field = "button_quantity"
	FieldButtonHoleCount    Field = "button_hole_count"
	FieldButtonLength       Field = "button_length"
	FieldButtonWidth        Field = "button_width"
	FieldButtonColor        Field = "button_color"
)

var (
	buttonQuantityMin = decimal.NewFromInt(1)
	buttonQuantityMax = decimal.NewFromInt(50)
	buttonSizeMin     = decimal.RequireFromString("0.5")
	buttonSizeMax     = decimal.NewFromInt(10)
)

type rule struct {
	field   Field
	label   string
	missing func(p *GarmentPiece) bool
}

var (
	fabricRule = rule{FieldFabric, "fabric", func(p *GarmentPiece) bool {
		return p.FabricID <= 0
	}}
	logoPositionRule = rule{FieldLogoPosition, "logo placement", func(p *GarmentPiece) bool {
		return blank(p.LogoPosition)
	}}
	frontDesignRule = rule{FieldFrontDesign, "front design image", func(p *GarmentPiece) bool {
		return !p.FrontDesign.Present()
	}}
	backDesignRule = rule{FieldBackDesign, "back design image", func(p *GarmentPiece) bool {
		return !p.BackDesign.Present()
	}}
	logoHeightRule = rule{FieldLogoHeight, "logo height", func(p *GarmentPiece) bool {
		return !positiveDecimal(p.LogoHeight)
	}}
	logoWidthRule = rule{FieldLogoWidth, "logo width", func(p *GarmentPiece) bool {
		return !positiveDecimal(p.LogoWidth)
	}}
	techniqueRule = rule{FieldAttachingTechnique, "attaching technique", func(p *GarmentPiece) bool {
		return blank(p.AttachingTechnique)
	}}
	buttonQuantityRule = rule{FieldButtonQuantity, "button quantity (1-50)", func(p *GarmentPiece) bool {
		return !integerInRange(p.Button.Quantity, buttonQuantityMin, buttonQuantityMax)
	}}
	buttonHoleRule = rule{FieldButtonHoleCount, "button hole count", func(p *GarmentPiece) bool {
		return !integerInRange(p.Button.HoleCount, buttonQuantityMin, decimal.Decimal{})
	}}
	buttonLengthRule = rule{FieldButtonLength, "button length (0.5-10 cm)", func(p *GarmentPiece) bool {
		return !decimalInRange(p.Button.Length, buttonSizeMin, buttonSizeMax)
	}}
	buttonWidthRule = rule{FieldButtonWidth, "button width (0.5-10 cm)", func(p *GarmentPiece) bool {
		return !decimalInRange(p.Button.Width, buttonSizeMin, buttonSizeMax)
	}}
	buttonColorRule = rule{FieldButtonColor, "button color", func(p *GarmentPiece) bool {
		return blank(p.Button.Color)
	}}
)

type ruleKey struct {
	piece enums.PieceType
	mode  enums.DesignType
}

// ruleTable is the single source of required fields per garment and design mode.
// Both the bulk report and the per-field check evaluate it.
var ruleTable = map[ruleKey][]rule{
	{enums.PieceTypeShirt, enums.DesignTypeNew}: {fabricRule, logoPositionRule},
	{enums.PieceTypePants, enums.DesignTypeNew}: {fabricRule},
	{enums.PieceTypeSkirt, enums.DesignTypeNew}: {fabricRule},
	{enums.PieceTypeShirt, enums.DesignTypeImport}: {
		fabricRule, logoPositionRule,
		frontDesignRule, backDesignRule,
		logoHeightRule, logoWidthRule, techniqueRule,
		buttonQuantityRule, buttonHoleRule, buttonLengthRule, buttonWidthRule, buttonColorRule,
	},
	{enums.PieceTypePants, enums.DesignTypeImport}: {fabricRule, frontDesignRule, backDesignRule},
	{enums.PieceTypeSkirt, enums.DesignTypeImport}: {fabricRule, frontDesignRule, backDesignRule},
}

func rulesFor(piece enums.PieceType, mode enums.DesignType) []rule {
	if !mode.IsValid() {
		mode = enums.DesignTypeNew
	}
	return ruleTable[ruleKey{piece: piece, mode: mode}]
}

// MissingField is one unmet requirement of a category and gender.
type MissingField struct {
	Piece enums.PieceType `json:"piece,omitempty"`
	Field Field           `json:"field"`
	Label string          `json:"label"`
}

// SectionReport lists the unmet requirements of one category and gender.
type SectionReport struct {
	Category enums.UniformCategory `json:"category"`
	Gender   enums.Gender          `json:"gender"`
	Missing  []MissingField        `json:"missing"`
}

// Report is the full validation outcome of a draft.
type Report struct {
	Messages  []string        `json:"messages"`
	Sections  []SectionReport `json:"sections"`
	CanSubmit bool            `json:"can_submit"`
}

// MissingFields validates the whole draft without side effects.
func MissingFields(d *Draft) Report {
	report := Report{Messages: []string{}, Sections: []SectionReport{}}
	if d == nil {
		report.Messages = append(report.Messages, "Design request is empty")
		return report
	}

	if blank(d.DesignName) {
		report.Messages = append(report.Messages, "Design name is required")
	}
	if !d.Logo.Present() {
		report.Messages = append(report.Messages, "Logo is required")
	}

	selected := d.SelectedCategories()
	if len(selected) == 0 {
		report.Messages = append(report.Messages, "Please select at least one Uniform Type")
	}

	for _, cat := range selected {
		genders := d.EnabledGenders(cat)
		if len(genders) == 0 {
			report.Messages = append(report.Messages, fmt.Sprintf("Please select at least one gender for %s uniform", cat.Label()))
			continue
		}
		for _, g := range genders {
			missing := missingFor(d, cat, g)
			if len(missing) == 0 {
				continue
			}
			report.Sections = append(report.Sections, SectionReport{Category: cat, Gender: g, Missing: missing})
		}
	}

	report.CanSubmit = len(report.Messages) == 0 && len(report.Sections) == 0
	return report
}

// CanSubmit reports whether the draft passes validation.
func CanSubmit(d *Draft) bool {
	return MissingFields(d).CanSubmit
}

// missingFor evaluates one category and gender regardless of selection state.
func missingFor(d *Draft, cat enums.UniformCategory, gender enums.Gender) []MissingField {
	var missing []MissingField
	if HasBottomChoice(cat, gender) {
		if sel := d.Selection(cat); sel == nil || !sel.BottomType.IsValid() {
			missing = append(missing, MissingField{Field: FieldBottomType, Label: "bottom type"})
		}
	}
	for _, piece := range d.ActivePieces(cat, gender) {
		p := d.Piece(cat, gender, piece)
		if p == nil {
			p = newGarmentPiece()
		}
		for _, r := range rulesFor(piece, d.DesignType) {
			if r.missing(p) {
				missing = append(missing, MissingField{
					Piece: piece,
					Field: r.field,
					Label: piece.Label() + " " + r.label,
				})
			}
		}
	}
	return missing
}

// IsFieldMissing checks a single field for inline highlighting. Fields of an
// unselected category, a disabled gender, an inactive bottom slot or a field
// not required in the current design mode are never reported.
func IsFieldMissing(d *Draft, cat enums.UniformCategory, gender enums.Gender, piece enums.PieceType, field Field) bool {
	if d == nil {
		return false
	}
	sel := d.Selection(cat)
	if sel == nil || !sel.Selected || !sel.GenderEnabled(gender) {
		return false
	}
	if field == FieldBottomType {
		return HasBottomChoice(cat, gender) && !sel.BottomType.IsValid()
	}

	active := false
	for _, p := range d.ActivePieces(cat, gender) {
		if p == piece {
			active = true
			break
		}
	}
	if !active {
		return false
	}

	p := d.Piece(cat, gender, piece)
	if p == nil {
		p = newGarmentPiece()
	}
	for _, r := range rulesFor(piece, d.DesignType) {
		if r.field == field {
			return r.missing(p)
		}
	}
	return false
}

// IsBoyInfoComplete reports whether the boy's garments of a category are fully specified.
func IsBoyInfoComplete(d *Draft, cat enums.UniformCategory) bool {
	return d != nil && len(missingFor(d, cat, enums.GenderBoy)) == 0
}

// IsGirlInfoComplete reports whether the girl's garments of a category are fully specified.
func IsGirlInfoComplete(d *Draft, cat enums.UniformCategory) bool {
	return d != nil && len(missingFor(d, cat, enums.GenderGirl)) == 0
}

func blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func parseDecimal(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func positiveDecimal(value string) bool {
	d, ok := parseDecimal(value)
	return ok && d.IsPositive()
}

func decimalInRange(value string, lo, hi decimal.Decimal) bool {
	d, ok := parseDecimal(value)
	return ok && d.GreaterThanOrEqual(lo) && d.LessThanOrEqual(hi)
}

// integerInRange checks an inclusive integer range; a zero hi means unbounded.
func integerInRange(value string, lo, hi decimal.Decimal) bool {
	d, ok := parseDecimal(value)
	if !ok || !d.IsInteger() || d.LessThan(lo) {
		return false
	}
	return hi.IsZero() || d.LessThanOrEqual(hi)
}
