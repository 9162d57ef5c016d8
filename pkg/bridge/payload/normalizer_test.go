/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package payload

import (
	"strings"
	"testing"

	"github.com/carverauto/assetbridge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StructuredCheckIn(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{"event":"asset.checkedin","asset":{"serial":"C02ABC","location":{"name":"HQ"}}}`))
	require.NoError(t, err)

	assert.Equal(t, KindStructured, res.Kind)
	assert.False(t, res.Ignored)
	require.NotNil(t, res.Request)

	assert.Equal(t, &models.SyncRequest{
		EventKind:       models.EventCheckedIn,
		AssetIdentifier: "C02ABC",
		IdentifierKind:  models.IdentifierSerial,
		LocationName:    "HQ",
	}, res.Request)

	patch := models.NewUserAndLocation(res.Request.Username, res.Request.RealName, res.Request.LocationName)
	assert.Equal(t, models.UserAndLocation{Building: "HQ", Department: "HQ"}, patch)
}

func TestNormalize_StructuredCheckInClearsUser(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{
		"event": "asset.checkedin",
		"asset": {
			"serial": "C02ABC",
			"assigned_to": {"username": "jdoe", "first_name": "Jane", "last_name": "Doe"},
			"location": {"name": "Lab"}
		}
	}`))
	require.NoError(t, err)

	assert.Empty(t, res.Request.Username)
	assert.Empty(t, res.Request.RealName)
	assert.Equal(t, "Lab", res.Request.LocationName)
}

func TestNormalize_StructuredCheckOut(t *testing.T) {
	n := NewNormalizer(Config{})

	testCases := []struct {
		name     string
		body     string
		expected *models.SyncRequest
	}{
		{
			name: "first and last name",
			body: `{"event":"asset.checkedout","asset":{"serial":"SN1","assigned_to":{"username":"jdoe","first_name":"Jane","last_name":"Doe"},"location":{"name":"HQ"}}}`,
			expected: &models.SyncRequest{
				EventKind: models.EventCheckedOut, AssetIdentifier: "SN1", IdentifierKind: models.IdentifierSerial,
				Username: "jdoe", RealName: "Jane Doe", LocationName: "HQ",
			},
		},
		{
			name: "display name fallback and numeric tag",
			body: `{"event":"ASSET.CHECKEDOUT","asset":{"asset_tag":18163,"assigned_to":{"username":"bob","name":"Bob Smith"}}}`,
			expected: &models.SyncRequest{
				EventKind: models.EventCheckedOut, AssetIdentifier: "18163", IdentifierKind: models.IdentifierAssetTag,
				Username: "bob", RealName: "Bob Smith",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := n.Normalize([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Request)
		})
	}
}

func TestNormalize_StructuredUnsupportedEventIgnored(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{"event":"asset.updated","asset":{"serial":"SN9"}}`))
	require.NoError(t, err)

	assert.True(t, res.Ignored)
	assert.Nil(t, res.Request)
	assert.Equal(t, "SN9", res.AssetHint)
	assert.Contains(t, res.Reason, "asset.updated")
}

func TestNormalize_Chat(t *testing.T) {
	n := NewNormalizer(Config{})

	body := `{
		"channel": "#it",
		"attachments": [{
			"title": "MacBook 28 (18163) checked out",
			"fields": [
				{"title": "To", "value": "<http://x|Jane Doe>"},
				{"title": "Location", "value": "<http://loc|Berlin Office>"}
			]
		}]
	}`

	res, err := n.Normalize([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, KindChat, res.Kind)
	require.NotNil(t, res.Request)
	assert.Equal(t, models.EventCheckedOut, res.Request.EventKind)
	assert.Equal(t, "18163", res.Request.AssetIdentifier)
	assert.Equal(t, models.IdentifierAssetTag, res.Request.IdentifierKind)
	assert.True(t, res.Request.NeedsResolution())
	assert.Equal(t, "Jane Doe", res.Request.RealName)
	assert.Equal(t, "janedoe", res.Request.Username)
	assert.Equal(t, "Berlin Office", res.Request.LocationName)
}

func TestNormalize_ChatPrimaryPhraseAndAdministratorFallback(t *testing.T) {
	n := NewNormalizer(Config{})

	body := `{
		"text": "Asset Checked In",
		"attachments": [{
			"title": "Dell XPS (00042)",
			"fields": [{"title": "administrator", "value": "Admin User"}]
		}]
	}`

	res, err := n.Normalize([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, models.EventCheckedIn, res.Request.EventKind)
	assert.Equal(t, "00042", res.Request.AssetIdentifier)
	assert.Empty(t, res.Request.RealName, "check-in clears the user")
}

func TestNormalize_ChatAdministratorUsedWhenNoTo(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{
		"attachments": [{
			"pretext": "Asset checked out",
			"title": "Laptop (7)",
			"fields": [{"title": "Administrator", "value": "<https://inv/users/1|Ada  Lovelace>"}]
		}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Ada  Lovelace", res.Request.RealName)
	assert.Equal(t, "adalovelace", res.Request.Username)
}

func TestNormalize_ChatNotACheckEventIgnored(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{"attachments":[{"title":"Monitor (55) was updated"}]}`))
	require.NoError(t, err)

	assert.True(t, res.Ignored)
	assert.Equal(t, "55", res.AssetHint)
}

func TestNormalize_ChatMissingTagMalformed(t *testing.T) {
	n := NewNormalizer(Config{})

	_, err := n.Normalize([]byte(`{"attachments":[{"title":"MacBook checked out"}]}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalize_TestPing(t *testing.T) {
	n := NewNormalizer(Config{})

	res, err := n.Normalize([]byte(`{"channel":"#endor","text":"Hello :wave: from your inventory"}`))
	require.NoError(t, err)
	assert.Equal(t, KindTestPing, res.Kind)
	assert.Nil(t, res.Request)

	custom := NewNormalizer(Config{TestChannel: "#ops", TestMarker: "ping"})

	res, err = custom.Normalize([]byte(`{"channel":"#ops","text":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, KindTestPing, res.Kind)

	_, err = custom.Normalize([]byte(`{"channel":"#endor","text":"Hello :wave:"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload, "not a ping for this config and has no attachments")
}

func TestNormalize_Malformed(t *testing.T) {
	n := NewNormalizer(Config{})

	testCases := map[string]string{
		"empty":              ``,
		"not json":           `event=asset.checkedin`,
		"array":              `[1,2]`,
		"null":               `null`,
		"unknown shape":      `{"hello":"world"}`,
		"no identity":        `{"event":"asset.checkedout","asset":{"location":{"name":"HQ"}}}`,
		"no asset":           `{"event":"asset.checkedin"}`,
		"wrong types":        `{"event":"asset.checkedin","asset":"C02ABC"}`,
		"chat no attachment": `{"text":"Asset checked out"}`,
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			res, err := n.Normalize([]byte(body))
			require.ErrorIs(t, err, ErrMalformedPayload)
			assert.Nil(t, res)
		})
	}
}

func TestNormalizeReader_SizeLimit(t *testing.T) {
	n := NewNormalizer(Config{MaxBodyBytes: 64})

	small := `{"event":"asset.checkedin","asset":{"serial":"S"}}`
	res, err := n.NormalizeReader(strings.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, "S", res.Request.AssetIdentifier)

	large := `{"event":"asset.checkedin","asset":{"serial":"` + strings.Repeat("x", 100) + `"}}`
	_, err = n.NormalizeReader(strings.NewReader(large))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "janedoe", DeriveUsername("Jane Doe"))
	assert.Equal(t, "maryannesmith", DeriveUsername(" Mary\tAnne  Smith "))
	assert.Equal(t, "", DeriveUsername(""))
}
