package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLeads(t *testing.T) {
	t.Run("returns leads", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "SELECT Id, FirstName")
				assert.Contains(t, soql, "FROM Lead WHERE IsConverted = false")
				assert.NotContains(t, soql, "Company =")

				leads := out.(*[]Lead)
				*leads = []Lead{
					{ID: "00Qxx", FirstName: "Jane", LastName: "Doe", Company: "Acme Corp"},
				}
				return nil
			},
		}

		leads, err := QueryLeads(context.Background(), mock, "", 0)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "00Qxx", leads[0].ID)
	})

	t.Run("filters by company with escaping", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, `Company = 'O\'Brien & Sons'`)
				assert.Contains(t, soql, "LIMIT 25")
				return nil
			},
		}

		_, err := QueryLeads(context.Background(), mock, "O'Brien & Sons", 25)
		require.NoError(t, err)
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mock := &mockClient{
			queryFn: func(_ context.Context, _ string, _ any) error {
				return errors.New("connection refused")
			},
		}

		leads, err := QueryLeads(context.Background(), mock, "", 0)
		assert.Error(t, err)
		assert.Nil(t, leads)
		assert.Contains(t, err.Error(), "query leads")
	})
}

func TestUpdateLeadRating(t *testing.T) {
	t.Run("writes rating field", func(t *testing.T) {
		mock := &mockClient{
			updateOneFn: func(_ context.Context, sObjectName string, id string, fields map[string]any) error {
				assert.Equal(t, "Lead", sObjectName)
				assert.Equal(t, "00Qxx", id)
				assert.Equal(t, "Hot", fields["Rating"])
				return nil
			},
		}

		err := UpdateLeadRating(context.Background(), mock, "00Qxx", "Hot")
		require.NoError(t, err)
	})

	t.Run("returns error on update failure", func(t *testing.T) {
		mock := &mockClient{
			updateOneFn: func(_ context.Context, _ string, _ string, _ map[string]any) error {
				return errors.New("FIELD_INTEGRITY_EXCEPTION")
			},
		}

		err := UpdateLeadRating(context.Background(), mock, "00Qxx", "Hot")
		assert.ErrorContains(t, err, "update lead rating")
	})
}
