package designrequest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniformhub/gateway/pkg/enums"
	pkgerrors "github.com/uniformhub/gateway/pkg/errors"
)

func TestBuildNewDesignPayloadRegularBoy(t *testing.T) {
	d := regularBoyNewDraft(t)
	mustApply(t, d,
		"regular.boy.shirt.references", `[{"name":"r0.png"},{"url":"https://img/hosted.png"}]`,
		"regular.boy.shirt.note", `"short sleeves"`,
	)

	urls := map[string]string{
		SlotLogo:                        "https://img/logo.png",
		"regular.boy.shirt.reference.0": "https://img/r0.png",
	}
	payload, err := BuildNewDesignPayload(d, urls)
	require.NoError(t, err)

	assert.Equal(t, "Spring 2026", payload.DesignName)
	assert.Equal(t, "https://img/logo.png", payload.LogoImage)
	require.Len(t, payload.DesignItem, 2)

	shirt := payload.DesignItem[0]
	assert.Equal(t, enums.PieceTypeShirt, shirt.ItemType)
	assert.Equal(t, enums.GenderBoy, shirt.Gender)
	assert.Equal(t, "regular", shirt.ItemCategory)
	assert.Equal(t, enums.CreateTypeNew, shirt.DesignType)
	assert.Equal(t, 3, shirt.FabricID)
	assert.Equal(t, "left chest", shirt.LogoPosition)
	assert.Equal(t, "short sleeves", shirt.Note)
	assert.Equal(t, []ImageRef{{URL: "https://img/r0.png"}, {URL: "https://img/hosted.png"}}, shirt.UploadImage)

	pants := payload.DesignItem[1]
	assert.Equal(t, enums.PieceTypePants, pants.ItemType)
	assert.Equal(t, 5, pants.FabricID)
	assert.Equal(t, "", pants.LogoPosition)
	assert.Equal(t, []ImageRef{}, pants.UploadImage)
}

func TestBuildNewDesignPayloadCategoryValue(t *testing.T) {
	d := NewDraft("head@school.edu", testNow)
	mustApply(t, d,
		"design_name", `"Gym"`,
		"logo", hostedImage("https://img/logo.png"),
		"physicalEducation.selected", `true`,
		"physicalEducation.genders.girl", `true`,
	)
	payload, err := BuildNewDesignPayload(d, nil)
	require.NoError(t, err)
	require.Len(t, payload.DesignItem, 2)
	for _, item := range payload.DesignItem {
		assert.Equal(t, "physical", item.ItemCategory)
		assert.Equal(t, enums.GenderGirl, item.Gender)
	}
}

func TestBuildImportPayloadGirlSkirt(t *testing.T) {
	d := NewDraft("head@school.edu", testNow)
	mustApply(t, d,
		"design_type", `"import"`,
		"design_name", `"Imported"`,
		"logo", hostedImage("https://img/logo.png"),
		"regular.selected", `true`,
		"regular.genders.girl", `true`,
		"regular.girl.bottom_type", `"skirt"`,
		"regular.girl.pants.fabric_id", `44`,
		"regular.girl.skirt.fabric_id", `8`,
		"regular.girl.skirt.zipper", `true`,
		"regular.girl.skirt.front_design", hostedImage("https://img/sf.png"),
		"regular.girl.skirt.back_design", hostedImage("https://img/sb.png"),
	)
	importShirtFields(t, d, "regular.girl.shirt")
	mustApply(t, d, "regular.girl.shirt.technique_note", `"heat press"`)

	urls := map[string]string{
		"regular.girl.shirt.front": "https://img/front.png",
		"regular.girl.shirt.back":  "https://img/back.png",
	}
	payload, err := BuildImportPayload(d, urls)
	require.NoError(t, err)

	assert.Equal(t, ImportDesignData{Name: "Imported", LogoImage: "https://img/logo.png"}, payload.DesignData)
	require.Len(t, payload.DesignItemDataList, 2)

	shirt := payload.DesignItemDataList[0]
	assert.Equal(t, enums.PieceTypeShirt, shirt.Type)
	assert.Equal(t, "center chest", shirt.LogoPosition)
	assert.Equal(t, "https://img/front.png", shirt.FrontImage)
	require.NotNil(t, shirt.ButtonData)
	assert.Equal(t, ButtonData{Quantity: 6, HoleQuantity: 4, Length: 1.2, Width: 1.2, Color: "white"}, *shirt.ButtonData)
	require.NotNil(t, shirt.LogoData)
	assert.Equal(t, LogoData{LogoHeight: 4.5, LogoWidth: 3, AttachingTechnique: "embroidery", Note: "heat press"}, *shirt.LogoData)

	skirt := payload.DesignItemDataList[1]
	assert.Equal(t, enums.PieceTypeSkirt, skirt.Type)
	assert.Equal(t, 8, skirt.FabricID)
	assert.True(t, skirt.Zipper)
	assert.Nil(t, skirt.ButtonData)
	assert.Nil(t, skirt.LogoData)
	assert.Equal(t, "https://img/sf.png", skirt.FrontImage)

	for _, item := range payload.DesignItemDataList {
		assert.NotEqual(t, enums.PieceTypePants, item.Type)
	}

	raw, err := json.Marshal(skirt)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "buttonData")
	assert.NotContains(t, string(raw), "logoData")
}

func TestBuildPayloadMissingUploadFails(t *testing.T) {
	d := regularBoyNewDraft(t)
	_, err := BuildNewDesignPayload(d, map[string]string{})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUpload, typed.Code())
	assert.Equal(t, map[string]any{"failed_slots": []string{SlotLogo}}, typed.Details())
}

func TestUploadPlan(t *testing.T) {
	t.Run("new design uploads logo and references", func(t *testing.T) {
		d := regularBoyNewDraft(t)
		mustApply(t, d,
			"regular.boy.shirt.references", `[{"name":"a.png"},{"url":"https://img/b.png"},{"name":"c.png"}]`,
			"regular.boy.shirt.front_design", pendingImage("ignored.png"),
		)
		var slots []string
		for _, job := range UploadPlan(d) {
			slots = append(slots, job.Slot)
		}
		assert.Equal(t, []string{"logo", "regular.boy.shirt.reference.0", "regular.boy.shirt.reference.2"}, slots)
	})

	t.Run("import uploads front and back of active pieces", func(t *testing.T) {
		d := NewDraft("head@school.edu", testNow)
		mustApply(t, d,
			"design_type", `"import"`,
			"logo", hostedImage("https://img/logo.png"),
			"regular.selected", `true`,
			"regular.genders.girl", `true`,
			"regular.girl.bottom_type", `"pants"`,
			"regular.girl.shirt.front_design", pendingImage("f.png"),
			"regular.girl.pants.back_design", pendingImage("b.png"),
			"regular.girl.skirt.front_design", pendingImage("inactive.png"),
		)
		var slots []string
		for _, job := range UploadPlan(d) {
			slots = append(slots, job.Slot)
		}
		assert.Equal(t, []string{"regular.girl.shirt.front", "regular.girl.pants.back"}, slots)
	})

	t.Run("disabled gender uploads nothing", func(t *testing.T) {
		d := regularBoyNewDraft(t)
		mustApply(t, d,
			"logo", hostedImage("https://img/logo.png"),
			"regular.boy.shirt.references", `[{"name":"a.png"}]`,
			"regular.genders.boy", `false`,
		)
		assert.Empty(t, UploadPlan(d))
	})
}
