package recommend

import "github.com/shenikar/emergency_dispatch/internal/models"

const (
	categoryExactScore    = 25
	categoryFallbackScore = 15
	categoryOtherScore    = 5
)

// preferredAgencies maps an incident category to the agency types that handle it.
var preferredAgencies = map[models.IncidentCategory][]models.AgencyType{
	models.CategoryFire:            {models.AgencyFireService, models.AgencyDisasterManagement},
	models.CategoryMedical:         {models.AgencyAmbulance, models.AgencyDisasterManagement},
	models.CategoryAccident:        {models.AgencyAmbulance, models.AgencyPolice},
	models.CategoryNaturalDisaster: {models.AgencyDisasterManagement, models.AgencyFireService},
	models.CategoryCrime:           {models.AgencyPolice},
	models.CategoryInfrastructure:  {models.AgencyDisasterManagement, models.AgencyPrivateResponder},
	models.CategoryOther:           {models.AgencyPrivateResponder},
}

func categoryScore(category models.IncidentCategory, agencyType models.AgencyType) float64 {
	for _, t := range preferredAgencies[category] {
		if t == agencyType {
			return categoryExactScore
		}
	}
	if agencyType == models.AgencyDisasterManagement {
		return categoryFallbackScore
	}
	return categoryOtherScore
}
