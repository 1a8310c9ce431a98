package designrequest

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uniformhub/gateway/pkg/enums"
)

// MaxReferenceImages caps the reference images attached to one garment piece.
const MaxReferenceImages = 4

// Image declares a picture attached to the draft. A set URL means the image is
// already hosted; otherwise the file is expected in the submit request.
type Image struct {
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Present reports whether the image has been declared at all.
func (i *Image) Present() bool {
	return i != nil && (strings.TrimSpace(i.URL) != "" || strings.TrimSpace(i.Name) != "")
}

// Hosted reports whether no upload is needed.
func (i *Image) Hosted() bool {
	return i != nil && strings.TrimSpace(i.URL) != ""
}

// Button describes the buttons of an imported shirt. Numbers are kept as
// the raw user input and parsed when validated or assembled.
type Button struct {
	Quantity  string `json:"quantity,omitempty"`
	HoleCount string `json:"hole_count,omitempty"`
	Length    string `json:"length,omitempty"`
	Width     string `json:"width,omitempty"`
	Color     string `json:"color,omitempty"`
	Note      string `json:"note,omitempty"`
}

// GarmentPiece holds everything configured for one garment.
type GarmentPiece struct {
	FabricID           int              `json:"fabric_id,omitempty"`
	Color              string           `json:"color,omitempty"`
	Note               string           `json:"note,omitempty"`
	CreateType         enums.CreateType `json:"create_type"`
	References         []Image          `json:"references"`
	LogoPosition       string           `json:"logo_position,omitempty"`
	FrontDesign        *Image           `json:"front_design,omitempty"`
	BackDesign         *Image           `json:"back_design,omitempty"`
	LogoHeight         string           `json:"logo_height,omitempty"`
	LogoWidth          string           `json:"logo_width,omitempty"`
	Button             Button           `json:"button"`
	AttachingTechnique string           `json:"attaching_technique,omitempty"`
	TechniqueNote      string           `json:"technique_note,omitempty"`
	Zipper             bool             `json:"zipper"`
}

func newGarmentPiece() *GarmentPiece {
	return &GarmentPiece{CreateType: enums.CreateTypeNew, References: []Image{}}
}

// UniformSelection is the per-category toggle state.
type UniformSelection struct {
	Selected   bool                  `json:"selected"`
	Genders    map[enums.Gender]bool `json:"genders"`
	BottomType enums.BottomType      `json:"bottom_type,omitempty"`
}

// GenderEnabled reports whether the gender is configured for the category.
func (u *UniformSelection) GenderEnabled(g enums.Gender) bool {
	return u != nil && u.Genders[g]
}

// PieceKey addresses a garment slot. Its text form is "regular.girl.skirt".
type PieceKey struct {
	Category enums.UniformCategory
	Gender   enums.Gender
	Piece    enums.PieceType
}

func (k PieceKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Category, k.Gender, k.Piece)
}

func (k PieceKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PieceKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePieceKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParsePieceKey parses the dotted text form of a piece key.
func ParsePieceKey(value string) (PieceKey, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return PieceKey{}, fmt.Errorf("invalid piece key %q", value)
	}
	cat, err := enums.ParseUniformCategory(parts[0])
	if err != nil {
		return PieceKey{}, err
	}
	gender, err := enums.ParseGender(parts[1])
	if err != nil {
		return PieceKey{}, err
	}
	piece, err := enums.ParsePieceType(parts[2])
	if err != nil {
		return PieceKey{}, err
	}
	key := PieceKey{Category: cat, Gender: gender, Piece: piece}
	if !key.Exists() {
		return PieceKey{}, fmt.Errorf("no %s slot for %s in %s", piece, gender, cat)
	}
	return key, nil
}

// Exists reports whether the slot is part of the uniform model. Skirts only
// exist for girls in the regular uniform.
func (k PieceKey) Exists() bool {
	for _, p := range PieceTypesFor(k.Category, k.Gender) {
		if p == k.Piece {
			return true
		}
	}
	return false
}

// PieceTypesFor lists every garment slot stored for a category and gender.
func PieceTypesFor(cat enums.UniformCategory, gender enums.Gender) []enums.PieceType {
	if cat == enums.UniformCategoryRegular && gender == enums.GenderGirl {
		return []enums.PieceType{enums.PieceTypeShirt, enums.PieceTypePants, enums.PieceTypeSkirt}
	}
	return []enums.PieceType{enums.PieceTypeShirt, enums.PieceTypePants}
}

// HasBottomChoice reports whether the gender picks its bottom via BottomType.
func HasBottomChoice(cat enums.UniformCategory, gender enums.Gender) bool {
	return cat == enums.UniformCategoryRegular && gender == enums.GenderGirl
}

// Draft is a design request under construction.
type Draft struct {
	ID         string                                      `json:"id"`
	Owner      string                                      `json:"owner"`
	DesignType enums.DesignType                            `json:"design_type"`
	DesignName string                                      `json:"design_name"`
	Logo       *Image                                      `json:"logo,omitempty"`
	Uniforms   map[enums.UniformCategory]*UniformSelection `json:"uniforms"`
	Pieces     map[PieceKey]*GarmentPiece                  `json:"pieces"`
	CreatedAt  time.Time                                   `json:"created_at"`
	UpdatedAt  time.Time                                   `json:"updated_at"`
}

// NewDraft returns an empty new-design draft with every slot allocated.
func NewDraft(owner string, now time.Time) *Draft {
	d := &Draft{
		ID:         uuid.NewString(),
		Owner:      owner,
		DesignType: enums.DesignTypeNew,
		Uniforms:   make(map[enums.UniformCategory]*UniformSelection, len(enums.UniformCategories)),
		Pieces:     make(map[PieceKey]*GarmentPiece),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	d.ensureSlots()
	return d
}

// ensureSlots allocates any missing selection or piece so lookups never hit nil.
func (d *Draft) ensureSlots() {
	if d.Uniforms == nil {
		d.Uniforms = make(map[enums.UniformCategory]*UniformSelection, len(enums.UniformCategories))
	}
	if d.Pieces == nil {
		d.Pieces = make(map[PieceKey]*GarmentPiece)
	}
	for _, cat := range enums.UniformCategories {
		sel := d.Uniforms[cat]
		if sel == nil {
			sel = &UniformSelection{}
			d.Uniforms[cat] = sel
		}
		if sel.Genders == nil {
			sel.Genders = make(map[enums.Gender]bool, len(enums.Genders))
		}
		for _, g := range enums.Genders {
			if _, ok := sel.Genders[g]; !ok {
				sel.Genders[g] = false
			}
			for _, p := range PieceTypesFor(cat, g) {
				key := PieceKey{Category: cat, Gender: g, Piece: p}
				if d.Pieces[key] == nil {
					d.Pieces[key] = newGarmentPiece()
				} else if d.Pieces[key].References == nil {
					d.Pieces[key].References = []Image{}
				}
			}
		}
	}
}

// Selection returns the toggle state for a category.
func (d *Draft) Selection(cat enums.UniformCategory) *UniformSelection {
	if d == nil || d.Uniforms == nil {
		return nil
	}
	return d.Uniforms[cat]
}

// Piece returns the stored slot, or nil if it does not exist.
func (d *Draft) Piece(cat enums.UniformCategory, gender enums.Gender, piece enums.PieceType) *GarmentPiece {
	if d == nil {
		return nil
	}
	return d.Pieces[PieceKey{Category: cat, Gender: gender, Piece: piece}]
}

// ActivePieces lists the slots that are validated and emitted for a gender.
// For a girl's regular uniform only the bottom matching BottomType counts; with
// no bottom type chosen only the shirt is active.
func (d *Draft) ActivePieces(cat enums.UniformCategory, gender enums.Gender) []enums.PieceType {
	if !HasBottomChoice(cat, gender) {
		return PieceTypesFor(cat, gender)
	}
	active := []enums.PieceType{enums.PieceTypeShirt}
	if sel := d.Selection(cat); sel != nil && sel.BottomType.IsValid() {
		active = append(active, sel.BottomType.Piece())
	}
	return active
}

// SelectedCategories lists the selected categories in display order.
func (d *Draft) SelectedCategories() []enums.UniformCategory {
	var out []enums.UniformCategory
	for _, cat := range enums.UniformCategories {
		if sel := d.Selection(cat); sel != nil && sel.Selected {
			out = append(out, cat)
		}
	}
	return out
}

// EnabledGenders lists the enabled genders of a category in display order.
func (d *Draft) EnabledGenders(cat enums.UniformCategory) []enums.Gender {
	sel := d.Selection(cat)
	var out []enums.Gender
	for _, g := range enums.Genders {
		if sel.GenderEnabled(g) {
			out = append(out, g)
		}
	}
	return out
}
