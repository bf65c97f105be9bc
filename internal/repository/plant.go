package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/pagination"
	"github.com/cloo-solutions/plantrec/internal/service"
)

const plantColumns = `id, name, common_name, scientific_name, category,
	height_min, height_max, width_min, width_max,
	sun_requirement, soil_type, water_need, hardiness_zone, maintenance_level,
	bloom_season, bloom_color, foliage_color, soil_ph_min, soil_ph_max, price,
	native, pollinator_friendly, deer_resistant, suitable_for_containers,
	suitable_for_hedging, suitable_for_screening, suitable_for_groundcover, suitable_for_slopes,
	pest_resistance, disease_resistance, wildlife_value, created_at, updated_at`

type PlantRepository struct {
	db dbtx
}

func NewPlantRepository(pool *pgxpool.Pool) *PlantRepository {
	return &PlantRepository{db: pool}
}

func NewPlantRepositoryWithTx(tx pgx.Tx) *PlantRepository {
	return &PlantRepository{db: tx}
}

// ListAll returns the whole catalog ordered by id.
func (r *PlantRepository) ListAll(ctx context.Context) ([]*domain.Plant, error) {
	rows, err := r.db.Query(ctx, `SELECT `+plantColumns+` FROM plants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlantRows(rows)
}

func (r *PlantRepository) GetByID(ctx context.Context, id string) (*domain.Plant, error) {
	p, err := scanPlant(r.db.QueryRow(ctx, `SELECT `+plantColumns+` FROM plants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlantNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListWithCursor pages through the catalog, most recently updated first.
func (r *PlantRepository) ListWithCursor(ctx context.Context, filter service.PlantFilter, cursor *pagination.Cursor, limit int) (*service.PlantPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+plantColumns+`
			 FROM plants
			 WHERE ($1 = '' OR category = $1) AND (updated_at, id) < ($2, $3)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $4`,
			filter.Category, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+plantColumns+`
			 FROM plants
			 WHERE ($1 = '' OR category = $1)
			 ORDER BY updated_at DESC, id DESC
			 LIMIT $2`,
			filter.Category, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanPlantRows(rows)
	if err != nil {
		return nil, err
	}

	page := pagination.Page(items, limit, func(p *domain.Plant) (string, time.Time) {
		return p.ID, p.UpdatedAt
	})

	return &service.PlantPageResult{
		Items:      page.Items,
		NextCursor: page.Cursor,
		HasMore:    page.HasMore,
	}, nil
}

// Upsert inserts a plant or replaces every attribute of an existing one.
// created_at of an existing row is preserved.
func (r *PlantRepository) Upsert(ctx context.Context, p *domain.Plant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO plants (`+plantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		         $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			common_name = EXCLUDED.common_name,
			scientific_name = EXCLUDED.scientific_name,
			category = EXCLUDED.category,
			height_min = EXCLUDED.height_min,
			height_max = EXCLUDED.height_max,
			width_min = EXCLUDED.width_min,
			width_max = EXCLUDED.width_max,
			sun_requirement = EXCLUDED.sun_requirement,
			soil_type = EXCLUDED.soil_type,
			water_need = EXCLUDED.water_need,
			hardiness_zone = EXCLUDED.hardiness_zone,
			maintenance_level = EXCLUDED.maintenance_level,
			bloom_season = EXCLUDED.bloom_season,
			bloom_color = EXCLUDED.bloom_color,
			foliage_color = EXCLUDED.foliage_color,
			soil_ph_min = EXCLUDED.soil_ph_min,
			soil_ph_max = EXCLUDED.soil_ph_max,
			price = EXCLUDED.price,
			native = EXCLUDED.native,
			pollinator_friendly = EXCLUDED.pollinator_friendly,
			deer_resistant = EXCLUDED.deer_resistant,
			suitable_for_containers = EXCLUDED.suitable_for_containers,
			suitable_for_hedging = EXCLUDED.suitable_for_hedging,
			suitable_for_screening = EXCLUDED.suitable_for_screening,
			suitable_for_groundcover = EXCLUDED.suitable_for_groundcover,
			suitable_for_slopes = EXCLUDED.suitable_for_slopes,
			pest_resistance = EXCLUDED.pest_resistance,
			disease_resistance = EXCLUDED.disease_resistance,
			wildlife_value = EXCLUDED.wildlife_value,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.CommonName, p.ScientificName, p.Category,
		p.HeightMin, p.HeightMax, p.WidthMin, p.WidthMax,
		p.SunRequirement, p.SoilType, p.WaterNeed, p.HardinessZone, p.MaintenanceLevel,
		p.BloomSeason, p.BloomColor, p.FoliageColor, p.SoilPHMin, p.SoilPHMax, p.Price,
		p.Native, p.PollinatorFriendly, p.DeerResistant, p.SuitableForContainers,
		p.SuitableForHedging, p.SuitableForScreening, p.SuitableForGroundcover, p.SuitableForSlopes,
		string(p.PestResistance), string(p.DiseaseResistance), string(p.WildlifeValue), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PlantRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPlantNotFound
	}
	return nil
}

func scanPlant(row pgx.Row) (*domain.Plant, error) {
	var p domain.Plant
	var pest, disease, wildlife string
	err := row.Scan(
		&p.ID, &p.Name, &p.CommonName, &p.ScientificName, &p.Category,
		&p.HeightMin, &p.HeightMax, &p.WidthMin, &p.WidthMax,
		&p.SunRequirement, &p.SoilType, &p.WaterNeed, &p.HardinessZone, &p.MaintenanceLevel,
		&p.BloomSeason, &p.BloomColor, &p.FoliageColor, &p.SoilPHMin, &p.SoilPHMax, &p.Price,
		&p.Native, &p.PollinatorFriendly, &p.DeerResistant, &p.SuitableForContainers,
		&p.SuitableForHedging, &p.SuitableForScreening, &p.SuitableForGroundcover, &p.SuitableForSlopes,
		&pest, &disease, &wildlife, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PestResistance = domain.ParseRating(pest)
	p.DiseaseResistance = domain.ParseRating(disease)
	p.WildlifeValue = domain.ParseRating(wildlife)
	return &p, nil
}

func scanPlantRows(rows pgx.Rows) ([]*domain.Plant, error) {
	var results []*domain.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}
