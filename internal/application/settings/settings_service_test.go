package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settingsapp "github.com/landerp/backend/internal/application/settings"
	"github.com/landerp/backend/internal/domain/shared"
	"github.com/landerp/backend/internal/testutil"
)

func percent(s string) *settingsapp.UpdateSettingsRequest {
	pct := testutil.Dec(s)
	return &settingsapp.UpdateSettingsRequest{OfficeChargePercent: &pct}
}

func TestService_CurrentFallsBackToDefaults(t *testing.T) {
	app := testutil.NewApp(t)

	values, err := app.Settings.Current(context.Background())
	require.NoError(t, err)
	testutil.AssertDecimal(t, "10", values.OfficeChargePercent, "office_charge_percent")
	assert.Equal(t, 7, values.InstallmentReminderDays)
}

func TestService_Update(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	values, err := app.Settings.Update(ctx, actors.Admin, *percent("12.5"))
	require.NoError(t, err)
	testutil.AssertDecimal(t, "12.5", values.OfficeChargePercent, "office_charge_percent")
	assert.Equal(t, 7, values.InstallmentReminderDays)

	days := 14
	values, err = app.Settings.Update(ctx, actors.Admin, settingsapp.UpdateSettingsRequest{InstallmentReminderDays: &days})
	require.NoError(t, err)
	testutil.AssertDecimal(t, "12.5", values.OfficeChargePercent, "office_charge_percent")
	assert.Equal(t, 14, values.InstallmentReminderDays)

	current, err := app.Settings.Current(ctx)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "12.5", current.OfficeChargePercent, "office_charge_percent")
	assert.Equal(t, 14, current.InstallmentReminderDays)
}

func TestService_UpdateRejections(t *testing.T) {
	app := testutil.NewApp(t)
	actors := testutil.NewActors(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		actor shared.Actor
		req   *settingsapp.UpdateSettingsRequest
		code  string
	}{
		{name: "manager", actor: actors.Manager, req: percent("5"), code: shared.CodeForbidden},
		{name: "hof", actor: actors.HOF, req: percent("5"), code: shared.CodeForbidden},
		{name: "negative percent", actor: actors.Admin, req: percent("-1"), code: shared.CodeValidation},
		{name: "percent over 100", actor: actors.Admin, req: percent("100.01"), code: shared.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Settings.Update(ctx, tt.actor, *tt.req)
			testutil.AssertErrorCode(t, err, tt.code)
		})
	}

	current, err := app.Settings.Current(ctx)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "10", current.OfficeChargePercent, "office_charge_percent")
}
