package designrequest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

// Op sets the value at a dotted path, e.g. "regular.girl.skirt.fabric_id".
type Op struct {
	Path  string          `json:"path" validate:"required"`
	Value json.RawMessage `json:"value"`
}

var fieldValidator = validator.New()

type pieceField struct {
	shirtOnly  bool
	bottomOnly bool
	apply      func(p *GarmentPiece, raw json.RawMessage) error
}

var pieceFields = map[string]pieceField{
	"fabric_id": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.FabricID, "min=0")
	}},
	"color": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.Color, "omitempty,hexcolor")
	}},
	"note": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.Note, "max=2000")
	}},
	"create_type": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		var value string
		if err := decodeInto(raw, &value, ""); err != nil {
			return err
		}
		ct, err := enums.ParseCreateType(value)
		if err != nil {
			return err
		}
		p.CreateType = ct
		return nil
	}},
	"references": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		var refs []Image
		if err := decodeInto(raw, &refs, ""); err != nil {
			return err
		}
		if len(refs) > MaxReferenceImages {
			return fmt.Errorf("at most %d reference images allowed", MaxReferenceImages)
		}
		if refs == nil {
			refs = []Image{}
		}
		p.References = refs
		return nil
	}},
	"logo_position": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.LogoPosition, "")
	}},
	"front_design": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeImage(raw, &p.FrontDesign)
	}},
	"back_design": {apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeImage(raw, &p.BackDesign)
	}},
	"logo_height": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.LogoHeight)
	}},
	"logo_width": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.LogoWidth)
	}},
	"button.quantity": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.Button.Quantity)
	}},
	"button.hole_count": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.Button.HoleCount)
	}},
	"button.length": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.Button.Length)
	}},
	"button.width": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeNumberText(raw, &p.Button.Width)
	}},
	"button.color": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.Button.Color, "")
	}},
	"button.note": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.Button.Note, "max=2000")
	}},
	"attaching_technique": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.AttachingTechnique, "")
	}},
	"technique_note": {shirtOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.TechniqueNote, "max=2000")
	}},
	"zipper": {bottomOnly: true, apply: func(p *GarmentPiece, raw json.RawMessage) error {
		return decodeInto(raw, &p.Zipper, "")
	}},
}

// Apply runs every op against the draft in order. The draft may be partially
// modified when an error is returned, so callers must not persist it then.
func Apply(d *Draft, ops []Op) error {
	for i, op := range ops {
		if err := applyOne(d, op); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid draft update").
				WithDetails(map[string]any{"index": i, "path": op.Path, "error": err.Error()})
		}
	}
	return nil
}

func applyOne(d *Draft, op Op) error {
	path := strings.TrimSpace(op.Path)
	switch path {
	case "design_type":
		var value string
		if err := decodeInto(op.Value, &value, ""); err != nil {
			return err
		}
		dt, err := enums.ParseDesignType(value)
		if err != nil {
			return err
		}
		d.DesignType = dt
		return nil
	case "design_name":
		return decodeInto(op.Value, &d.DesignName, "max=200")
	case "logo":
		return decodeImage(op.Value, &d.Logo)
	}

	parts := strings.SplitN(path, ".", 4)
	if len(parts) < 2 {
		return fmt.Errorf("unknown path %q", path)
	}
	cat, err := enums.ParseUniformCategory(parts[0])
	if err != nil {
		return err
	}
	sel := d.Selection(cat)

	if parts[1] == "selected" && len(parts) == 2 {
		return decodeInto(op.Value, &sel.Selected, "")
	}
	if parts[1] == "genders" && len(parts) == 3 {
		gender, err := enums.ParseGender(parts[2])
		if err != nil {
			return err
		}
		var enabled bool
		if err := decodeInto(op.Value, &enabled, ""); err != nil {
			return err
		}
		// Disabling a gender keeps its garment values for when it is re-enabled.
		sel.Genders[gender] = enabled
		return nil
	}

	gender, err := enums.ParseGender(parts[1])
	if err != nil {
		return fmt.Errorf("unknown path %q", path)
	}
	if len(parts) == 3 && parts[2] == "bottom_type" {
		if !HasBottomChoice(cat, gender) {
			return fmt.Errorf("bottom type only applies to girls in the regular uniform")
		}
		var value string
		if err := decodeInto(op.Value, &value, ""); err != nil {
			return err
		}
		bt, err := enums.ParseBottomType(value)
		if err != nil {
			return err
		}
		sel.BottomType = bt
		return nil
	}
	if len(parts) < 4 {
		return fmt.Errorf("unknown path %q", path)
	}

	key, err := ParsePieceKey(strings.Join(parts[:3], "."))
	if err != nil {
		return err
	}
	field, ok := pieceFields[parts[3]]
	if !ok {
		return fmt.Errorf("unknown garment field %q", parts[3])
	}
	if field.shirtOnly && key.Piece != enums.PieceTypeShirt {
		return fmt.Errorf("%s only applies to shirts", parts[3])
	}
	if field.bottomOnly && !key.Piece.IsBottom() {
		return fmt.Errorf("%s only applies to pants and skirts", parts[3])
	}
	return field.apply(d.Pieces[key], op.Value)
}

func decodeInto[T any](raw json.RawMessage, dest *T, tag string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("value is required")
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if tag != "" {
		if err := fieldValidator.Var(value, tag); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
	}
	*dest = value
	return nil
}

func decodeImage(raw json.RawMessage, dest **Image) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*dest = nil
		return nil
	}
	var img Image
	if err := json.Unmarshal(trimmed, &img); err != nil {
		return fmt.Errorf("invalid image: %w", err)
	}
	if !img.Present() {
		return fmt.Errorf("image needs a name or url")
	}
	*dest = &img
	return nil
}

// decodeNumberText accepts either a JSON number or a string and stores the text.
// Empty strings clear the field.
func decodeNumberText(raw json.RawMessage, dest *string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("value is required")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
		*dest = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid number: %w", err)
	}
	*dest = n.String()
	return nil
}
