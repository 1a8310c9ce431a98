package designrequest

import (
	"fmt"
	"strings"

	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

// SlotLogo is the upload slot of the design logo.
const SlotLogo = "logo"

// UploadJob is one image that must be uploaded before the payload is built.
type UploadJob struct {
	Slot  string
	Image Image
}

// ImageRef is a hosted image reference.
type ImageRef struct {
	URL string `json:"url"`
}

// NewDesignItem describes one garment of a new-design request.
type NewDesignItem struct {
	DesignType   enums.CreateType `json:"designType"`
	Gender       enums.Gender     `json:"gender"`
	ItemType     enums.PieceType  `json:"itemType"`
	ItemCategory string           `json:"itemCategory"`
	FabricID     int              `json:"fabricId"`
	LogoPosition string           `json:"logoPosition"`
	Color        string           `json:"color"`
	Note         string           `json:"note"`
	UploadImage  []ImageRef       `json:"uploadImage"`
}

// NewDesignPayload is the body of createDesignRequest.
type NewDesignPayload struct {
	DesignName string          `json:"designName"`
	LogoImage  string          `json:"logoImage"`
	DesignItem []NewDesignItem `json:"designItem"`
}

// ButtonData is the numeric button block of an imported shirt.
type ButtonData struct {
	Quantity     int     `json:"quantity"`
	HoleQuantity int     `json:"holeQuantity"`
	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	Color        string  `json:"color"`
	Note         string  `json:"note"`
}

// LogoData is the logo placement block of an imported shirt.
type LogoData struct {
	LogoHeight         float64 `json:"logoHeight"`
	LogoWidth          float64 `json:"logoWidth"`
	AttachingTechnique string  `json:"attachingTechnique"`
	Note               string  `json:"note"`
}

// ImportItem describes one garment of an import-design request.
type ImportItem struct {
	Type         enums.PieceType `json:"type"`
	Category     string          `json:"category"`
	LogoPosition string          `json:"logoPosition"`
	Color        string          `json:"color"`
	Gender       enums.Gender    `json:"gender"`
	FabricID     int             `json:"fabricId"`
	FrontImage   string          `json:"frontImage"`
	BackImage    string          `json:"backImage"`
	ButtonData   *ButtonData     `json:"buttonData,omitempty"`
	LogoData     *LogoData       `json:"logoData,omitempty"`
	Zipper       bool            `json:"zipper"`
}

// ImportDesignData carries the design identity of an import request.
type ImportDesignData struct {
	Name      string `json:"name"`
	LogoImage string `json:"logoImage"`
}

// ImportPayload is the body of importDesign.
type ImportPayload struct {
	DesignData         ImportDesignData `json:"designData"`
	DesignItemDataList []ImportItem     `json:"designItemDataList"`
}

// activeSlot is one emitted garment in payload order.
type activeSlot struct {
	key   PieceKey
	piece *GarmentPiece
}

// activeSlots walks selected categories, enabled genders and active pieces in
// display order.
func activeSlots(d *Draft) []activeSlot {
	var out []activeSlot
	for _, cat := range d.SelectedCategories() {
		for _, g := range d.EnabledGenders(cat) {
			for _, pt := range d.ActivePieces(cat, g) {
				key := PieceKey{Category: cat, Gender: g, Piece: pt}
				p := d.Pieces[key]
				if p == nil {
					p = newGarmentPiece()
				}
				out = append(out, activeSlot{key: key, piece: p})
			}
		}
	}
	return out
}

// ReferenceSlot names the upload slot of a reference image.
func ReferenceSlot(key PieceKey, index int) string {
	return fmt.Sprintf("%s.reference.%d", key, index)
}

// FrontSlot names the upload slot of a front design image.
func FrontSlot(key PieceKey) string {
	return key.String() + ".front"
}

// BackSlot names the upload slot of a back design image.
func BackSlot(key PieceKey) string {
	return key.String() + ".back"
}

// UploadPlan lists, in submission order, every declared image that still needs
// uploading. Hosted images are skipped.
func UploadPlan(d *Draft) []UploadJob {
	var jobs []UploadJob
	add := func(slot string, img *Image) {
		if img.Present() && !img.Hosted() {
			jobs = append(jobs, UploadJob{Slot: slot, Image: *img})
		}
	}

	add(SlotLogo, d.Logo)
	for _, s := range activeSlots(d) {
		if d.DesignType == enums.DesignTypeImport {
			add(FrontSlot(s.key), s.piece.FrontDesign)
			add(BackSlot(s.key), s.piece.BackDesign)
			continue
		}
		for i := range s.piece.References {
			add(ReferenceSlot(s.key, i), &s.piece.References[i])
		}
	}
	return jobs
}

type resolver struct {
	urls    map[string]string
	missing []string
}

func (r *resolver) url(slot string, img *Image) string {
	if !img.Present() {
		return ""
	}
	if img.Hosted() {
		return strings.TrimSpace(img.URL)
	}
	if url := r.urls[slot]; url != "" {
		return url
	}
	r.missing = append(r.missing, slot)
	return ""
}

func (r *resolver) err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUpload, "images were not uploaded").
		WithDetails(map[string]any{"failed_slots": r.missing})
}

// BuildNewDesignPayload assembles the createDesignRequest body from the draft
// and the URLs of the images uploaded for it.
func BuildNewDesignPayload(d *Draft, urls map[string]string) (NewDesignPayload, error) {
	r := &resolver{urls: urls}
	payload := NewDesignPayload{
		DesignName: strings.TrimSpace(d.DesignName),
		LogoImage:  r.url(SlotLogo, d.Logo),
		DesignItem: []NewDesignItem{},
	}

	for _, s := range activeSlots(d) {
		refs := make([]ImageRef, 0, len(s.piece.References))
		for i := range s.piece.References {
			if url := r.url(ReferenceSlot(s.key, i), &s.piece.References[i]); url != "" {
				refs = append(refs, ImageRef{URL: url})
			}
		}
		createType := s.piece.CreateType
		if !createType.IsValid() {
			createType = enums.CreateTypeNew
		}
		payload.DesignItem = append(payload.DesignItem, NewDesignItem{
			DesignType:   createType,
			Gender:       s.key.Gender,
			ItemType:     s.key.Piece,
			ItemCategory: s.key.Category.PayloadValue(),
			FabricID:     s.piece.FabricID,
			LogoPosition: logoPosition(s.key.Piece, s.piece.LogoPosition),
			Color:        s.piece.Color,
			Note:         s.piece.Note,
			UploadImage:  refs,
		})
	}
	return payload, r.err()
}

// BuildImportPayload assembles the importDesign body from the draft and the
// URLs of the images uploaded for it.
func BuildImportPayload(d *Draft, urls map[string]string) (ImportPayload, error) {
	r := &resolver{urls: urls}
	payload := ImportPayload{
		DesignData: ImportDesignData{
			Name:      strings.TrimSpace(d.DesignName),
			LogoImage: r.url(SlotLogo, d.Logo),
		},
		DesignItemDataList: []ImportItem{},
	}

	for _, s := range activeSlots(d) {
		item := ImportItem{
			Type:         s.key.Piece,
			Category:     s.key.Category.PayloadValue(),
			LogoPosition: logoPosition(s.key.Piece, s.piece.LogoPosition),
			Color:        s.piece.Color,
			Gender:       s.key.Gender,
			FabricID:     s.piece.FabricID,
			FrontImage:   r.url(FrontSlot(s.key), s.piece.FrontDesign),
			BackImage:    r.url(BackSlot(s.key), s.piece.BackDesign),
		}
		if s.key.Piece == enums.PieceTypeShirt {
			item.ButtonData = &ButtonData{
				Quantity:     safeInt(s.piece.Button.Quantity),
				HoleQuantity: safeInt(s.piece.Button.HoleCount),
				Length:       safeFloat(s.piece.Button.Length),
				Width:        safeFloat(s.piece.Button.Width),
				Color:        s.piece.Button.Color,
				Note:         s.piece.Button.Note,
			}
			item.LogoData = &LogoData{
				LogoHeight:         safeFloat(s.piece.LogoHeight),
				LogoWidth:          safeFloat(s.piece.LogoWidth),
				AttachingTechnique: s.piece.AttachingTechnique,
				Note:               s.piece.TechniqueNote,
			}
		} else {
			item.Zipper = s.piece.Zipper
		}
		payload.DesignItemDataList = append(payload.DesignItemDataList, item)
	}
	return payload, r.err()
}

func logoPosition(piece enums.PieceType, value string) string {
	if piece != enums.PieceTypeShirt {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func safeInt(value string) int {
	d, ok := parseDecimal(value)
	if !ok {
		return 0
	}
	return int(d.IntPart())
}

func safeFloat(value string) float64 {
	d, ok := parseDecimal(value)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}
