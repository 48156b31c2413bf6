package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

const DefaultTopN = 5

type ReportUseCase interface {
	// TopProducts ranks products by quantity sold over orders dated in
	// [from, to). Zero times default to the rolling month ending now; n <= 0
	// defaults to DefaultTopN.
	TopProducts(ctx context.Context, from, to time.Time, n int) ([]domain.ProductSales, error)
}

type reportUseCase struct {
	reportRepo   domain.ReportRepository
	categoryRepo domain.CategoryRepository
	cache        domain.ReportCache
	log          *logrus.Logger
}

func NewReportUseCase(
	reportRepo domain.ReportRepository,
	categoryRepo domain.CategoryRepository,
	cache domain.ReportCache,
	logger *logrus.Logger,
) ReportUseCase {
	return &reportUseCase{
		reportRepo:   reportRepo,
		categoryRepo: categoryRepo,
		cache:        cache,
		log:          logger,
	}
}

func (uc *reportUseCase) TopProducts(ctx context.Context, from, to time.Time, n int) ([]domain.ProductSales, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if !from.Before(to) {
		return nil, &domain.ValidationError{Reason: "report window start must precede its end"}
	}
	if n <= 0 {
		n = DefaultTopN
	}

	if uc.cache != nil {
		if rows, ok := uc.cache.Get(ctx, n, from, to); ok {
			uc.log.Debugf("Use Case: Top-%d report served from cache", n)
			return rows, nil
		}
	}

	salesRows, err := uc.reportRepo.ProductSalesBetween(from, to)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to aggregate sales: %v", err)
		return nil, err
	}

	report := make([]domain.ProductSales, 0, len(salesRows))
	rootNames := map[int]string{}
	for _, row := range salesRows {
		rootName := domain.UncategorizedName
		if row.CategoryPath != nil {
			rootName, err = uc.rootNameForPath(*row.CategoryPath, rootNames)
			if err != nil {
				return nil, err
			}
		}
		report = append(report, domain.ProductSales{
			ProductID:        row.ProductID,
			ProductName:      row.ProductName,
			RootCategoryName: rootName,
			TotalQuantity:    row.TotalQuantity,
		})
	}

	// Quantity descending; ties break on product id ascending so results are
	// reproducible.
	sort.Slice(report, func(i, j int) bool {
		if report[i].TotalQuantity != report[j].TotalQuantity {
			return report[i].TotalQuantity > report[j].TotalQuantity
		}
		return report[i].ProductID < report[j].ProductID
	})
	if len(report) > n {
		report = report[:n]
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, n, from, to, report)
	}

	uc.log.Infof("Use Case: Top-%d report built with %d entries for [%s, %s)",
		n, len(report), from.Format(time.RFC3339), to.Format(time.RFC3339))
	return report, nil
}

func (uc *reportUseCase) rootNameForPath(path string, memo map[int]string) (string, error) {
	rootID, err := domain.RootSegment(path)
	if err != nil {
		uc.log.Errorf("Use Case: Corrupt category path %q in sales data: %v", path, err)
		return "", &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("corrupt category path %q in sales data", path),
		}
	}
	if name, ok := memo[rootID]; ok {
		return name, nil
	}

	root, err := uc.categoryRepo.GetCategoryByID(rootID)
	if err != nil {
		uc.log.Errorf("Use Case: Root category %d referenced by path %q is missing: %v", rootID, path, err)
		return "", &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("root category %d referenced by path %q is missing", rootID, path),
		}
	}
	memo[rootID] = root.Name
	return root.Name, nil
}
