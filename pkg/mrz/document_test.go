package mrz_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

func TestNewDocument_TD3(t *testing.T) {
	r, err := mrz.Build(td3Specimen)
	require.NoError(t, err)

	doc := mrz.NewDocument(r, mrz.Meta{Method: "text", Walltime: 1500 * time.Millisecond, ReferenceYear: 2024})

	assert.Equal(t, "TD3", doc.MRZType)
	assert.Equal(t, "P", doc.Type)
	assert.Equal(t, "ANNA MARIA ERIKSSON", doc.DisplayName)
	assert.Equal(t, "1974-08-12", doc.DateOfBirthISO)
	assert.Equal(t, "2012-04-15", doc.ExpirationISO)
	assert.Equal(t, "ZE184226B", doc.PersonalNumber)
	assert.Equal(t, "1", doc.CheckPersonalNumber)
	assert.Equal(t, "0", doc.CheckComposite)
	assert.True(t, doc.ValidComposite)
	assert.Equal(t, 100, doc.ValidScore)
	assert.Equal(t, "text", doc.Method)
	assert.InDelta(t, 1.5, doc.Walltime, 1e-9)
}

func TestNewDocument_VisaHasNoComposite(t *testing.T) {
	r, err := mrz.Build(mrvbSpecimen)
	require.NoError(t, err)

	doc := mrz.NewDocument(r, mrz.Meta{ReferenceYear: 2024})

	assert.Empty(t, doc.CheckComposite)
	assert.False(t, doc.ValidComposite)
	assert.Empty(t, doc.PersonalNumber)
	assert.False(t, doc.ValidPersonalNumber)
	assert.Equal(t, "1940-09-07", doc.DateOfBirthISO)
	assert.Equal(t, "1996-12-10", doc.ExpirationISO)
}

func TestDocument_JSONKeys(t *testing.T) {
	r, err := mrz.Build(td3Specimen)
	require.NoError(t, err)

	data, err := json.Marshal(mrz.NewDocument(r, mrz.Meta{}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	for _, key := range []string{
		"type", "country", "names", "surname", "number", "nationality",
		"date_of_birth", "sex", "expiration_date", "personal_number",
		"valid_score", "valid_number", "valid_date_of_birth", "valid_expiration_date",
		"valid_composite", "valid_personal_number", "check_number", "check_date_of_birth",
		"check_expiration_date", "check_composite", "check_personal_number",
		"mrz_type", "method", "walltime",
	} {
		assert.Contains(t, m, key)
	}
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	r, err := mrz.Build(td1Specimen)
	require.NoError(t, err)
	doc := mrz.NewDocument(r, mrz.Meta{Method: "tesseract", Walltime: 2345 * time.Millisecond, ReferenceYear: 2024})

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back mrz.Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc, back)
}
