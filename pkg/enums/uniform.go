package enums

import "fmt"

// UniformCategory is the uniform family a school can request.
type UniformCategory string

const (
	UniformCategoryRegular           UniformCategory = "regular"
	UniformCategoryPhysicalEducation UniformCategory = "physicalEducation"
)

// UniformCategories lists categories in display order.
var UniformCategories = []UniformCategory{
	UniformCategoryRegular,
	UniformCategoryPhysicalEducation,
}

func (c UniformCategory) String() string {
	return string(c)
}

func (c UniformCategory) IsValid() bool {
	for _, candidate := range UniformCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// PayloadValue is the item category understood by the design service.
func (c UniformCategory) PayloadValue() string {
	if c == UniformCategoryPhysicalEducation {
		return "physical"
	}
	return string(c)
}

// Label is the human-readable section title.
func (c UniformCategory) Label() string {
	if c == UniformCategoryPhysicalEducation {
		return "Physical Education"
	}
	return "Regular"
}

func ParseUniformCategory(value string) (UniformCategory, error) {
	for _, candidate := range UniformCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid uniform category %q", value)
}

// Gender of the students a uniform is cut for.
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// Genders lists genders in display order.
var Genders = []Gender{
	GenderBoy,
	GenderGirl,
}

func (g Gender) String() string {
	return string(g)
}

func (g Gender) IsValid() bool {
	for _, candidate := range Genders {
		if candidate == g {
			return true
		}
	}
	return false
}

func (g Gender) Label() string {
	if g == GenderGirl {
		return "Girl"
	}
	return "Boy"
}

func ParseGender(value string) (Gender, error) {
	for _, candidate := range Genders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gender %q", value)
}

// PieceType is a single garment in a uniform set.
type PieceType string

const (
	PieceTypeShirt PieceType = "shirt"
	PieceTypePants PieceType = "pants"
	PieceTypeSkirt PieceType = "skirt"
)

var validPieceTypes = []PieceType{
	PieceTypeShirt,
	PieceTypePants,
	PieceTypeSkirt,
}

func (p PieceType) String() string {
	return string(p)
}

func (p PieceType) IsValid() bool {
	for _, candidate := range validPieceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsBottom reports whether the piece is worn on the lower body.
func (p PieceType) IsBottom() bool {
	return p == PieceTypePants || p == PieceTypeSkirt
}

func (p PieceType) Label() string {
	switch p {
	case PieceTypePants:
		return "Pants"
	case PieceTypeSkirt:
		return "Skirt"
	default:
		return "Shirt"
	}
}

func ParsePieceType(value string) (PieceType, error) {
	for _, candidate := range validPieceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid piece type %q", value)
}

// BottomType picks the bottom garment of a girl's regular uniform.
type BottomType string

const (
	BottomTypeUnset BottomType = ""
	BottomTypePants BottomType = "pants"
	BottomTypeSkirt BottomType = "skirt"
)

func (b BottomType) IsValid() bool {
	return b == BottomTypePants || b == BottomTypeSkirt
}

// Piece returns the garment slot the bottom type points at.
func (b BottomType) Piece() PieceType {
	if b == BottomTypeSkirt {
		return PieceTypeSkirt
	}
	return PieceTypePants
}

func ParseBottomType(value string) (BottomType, error) {
	switch BottomType(value) {
	case BottomTypePants, BottomTypeSkirt, BottomTypeUnset:
		return BottomType(value), nil
	}
	return "", fmt.Errorf("invalid bottom type %q", value)
}

// CreateType is how a garment piece's artwork is sourced in a new design.
type CreateType string

const (
	CreateTypeNew    CreateType = "new"
	CreateTypeUpload CreateType = "upload"
)

func (c CreateType) IsValid() bool {
	return c == CreateTypeNew || c == CreateTypeUpload
}

func ParseCreateType(value string) (CreateType, error) {
	switch CreateType(value) {
	case CreateTypeNew, CreateTypeUpload:
		return CreateType(value), nil
	}
	return "", fmt.Errorf("invalid create type %q", value)
}
