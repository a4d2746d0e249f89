package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_AggregatesSeedRecords(t *testing.T) {
	catalog := mustCatalog(t)

	// agent_hau_le_so appears twice in the seed; the profile must merge
	// both records.
	profile := catalog.Profile("agent_hau_le_so")

	assert.Equal(t, "Lê Lợi", profile.PersonaName)
	assert.Equal(t, "Nhà Hậu Lê", profile.PeriodLabel)
	assert.Equal(t, "1428 - 1527", profile.YearRange)
	assert.Equal(t, []string{"Lê Lợi", "Nguyễn Trãi", "Lê Thánh Tông", "Lương Thế Vinh"}, profile.NotableFigures)
	assert.Contains(t, profile.KeyEvents, "Khởi nghĩa Lam Sơn")
	assert.Contains(t, profile.KeyEvents, "Bộ luật Hồng Đức")
	assert.Contains(t, profile.Summary, "Lam Sơn")
	assert.Contains(t, profile.Summary, "Hồng Đức")
}

func TestProfile_AliasResolution(t *testing.T) {
	catalog := mustCatalog(t)

	direct := catalog.Profile("agent_hau_le_so")

	assert.Equal(t, direct, catalog.Profile("agent_le"))
	assert.Equal(t, direct, catalog.Profile("agent_le_so"))
	assert.Equal(t, catalog.Profile("agent_chxhcn_vn"), catalog.Profile("agent_hien_dai"))
	assert.Equal(t, catalog.Profile("agent_phap_thuoc"), catalog.Profile("agent_can_dai"))
}

func TestProfile_UnknownFallsBackToAdvisor(t *testing.T) {
	catalog := mustCatalog(t)

	profile := catalog.Profile("agent_does_not_exist")

	assert.Equal(t, DefaultAgentID, profile.AgentID)
	assert.Equal(t, "Cố vấn lịch sử", profile.PersonaName)
}

func TestProfile_YearSpanFormattedWhenRangeMissing(t *testing.T) {
	catalog := mustCatalog(t)

	// The seed record has start/end years but no year_range string.
	profile := catalog.Profile("agent_bac_thuoc_2")

	require.NotEmpty(t, profile.YearRange)
	assert.Contains(t, profile.YearRange, "179 TCN")
	assert.Contains(t, profile.YearRange, "938")
}

func TestChoices_IncludesLegacyAndAliasIDs(t *testing.T) {
	catalog := mustCatalog(t)

	choices := catalog.Choices()

	for _, id := range []string{
		DefaultAgentID,
		"agent_ly", "agent_tran", "agent_le", "agent_le_so", "agent_can_dai",
		"agent_hau_le_so", "agent_phap_thuoc", "agent_chxhcn_vn", "agent_bac_thuoc",
	} {
		assert.Contains(t, choices, id)
	}
	assert.True(t, catalog.IsKnownAgent("agent_le_so"))
	assert.False(t, catalog.IsKnownAgent("agent_bogus"))
}

func TestMapDocPeriod(t *testing.T) {
	catalog := mustCatalog(t)

	assert.Equal(t, "le", catalog.MapDocPeriod("hau le"))
	assert.Equal(t, "hien_dai", catalog.MapDocPeriod("modern"))
	assert.Equal(t, "tay_son", catalog.MapDocPeriod("tay son"))
	// Unmapped tags pass through.
	assert.Equal(t, "champa", catalog.MapDocPeriod("champa"))
}

func TestPeriodProfiles_OrderIsStable(t *testing.T) {
	catalog := mustCatalog(t)

	profiles := catalog.PeriodProfiles()
	require.Len(t, profiles, 8)
	assert.Equal(t, "hong_bang", profiles[0].Code)
	assert.Equal(t, "hien_dai", profiles[7].Code)
}
