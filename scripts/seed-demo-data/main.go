// Command seed-demo-data loads demo marketplace data from fixtures.yaml into
// the database named by the standard PG* environment variables. It is meant
// for local development and demo environments, not production.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/promatch-inc/promatch-engine/pkg/config"
	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/logging"
	"github.com/promatch-inc/promatch-engine/pkg/models"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
)

type fixtures struct {
	Users []struct {
		Key         string `yaml:"key"`
		Email       string `yaml:"email"`
		DisplayName string `yaml:"display_name"`
		Role        string `yaml:"role"`
	} `yaml:"users"`
	Projects []struct {
		Key         string `yaml:"key"`
		Client      string `yaml:"client"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Category    string `yaml:"category"`
		Location    string `yaml:"location"`
		BudgetMin   *int64 `yaml:"budget_min"`
		BudgetMax   *int64 `yaml:"budget_max"`
	} `yaml:"projects"`
	Proposals []struct {
		Project     string `yaml:"project"`
		Business    string `yaml:"business"`
		Amount      int64  `yaml:"amount"`
		Description string `yaml:"description"`
		WorkPlan    string `yaml:"work_plan"`
	} `yaml:"proposals"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load("seed")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	path := "scripts/seed-demo-data/fixtures.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("failed to parse fixtures: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, &database.Config{
		URL: cfg.Database.ConnectionString(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	scopedCtx, cleanup, err := database.NewScopeProvider(db).WithScope(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire scope: %w", err)
	}
	defer cleanup()

	userRepo := repositories.NewUserRepository()
	projectRepo := repositories.NewProjectRepository()
	proposalRepo := repositories.NewProposalRepository()

	users := make(map[string]*models.User)
	for _, u := range fx.Users {
		user := &models.User{Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
		if err := userRepo.Create(scopedCtx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Key, err)
		}
		users[u.Key] = user
	}

	projects := make(map[string]*models.Project)
	for _, p := range fx.Projects {
		client, ok := users[p.Client]
		if !ok {
			return fmt.Errorf("project %s references unknown client %s", p.Key, p.Client)
		}
		project := &models.Project{
			ClientID:    client.ID,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Location:    p.Location,
			BudgetMin:   p.BudgetMin,
			BudgetMax:   p.BudgetMax,
			Status:      models.ProjectStatusOpen,
		}
		if err := projectRepo.Create(scopedCtx, project); err != nil {
			return fmt.Errorf("failed to seed project %s: %w", p.Key, err)
		}
		projects[p.Key] = project
	}

	for _, pr := range fx.Proposals {
		project, ok := projects[pr.Project]
		if !ok {
			return fmt.Errorf("proposal references unknown project %s", pr.Project)
		}
		business, ok := users[pr.Business]
		if !ok {
			return fmt.Errorf("proposal references unknown business %s", pr.Business)
		}
		proposal := &models.Proposal{
			ProjectID:   project.ID,
			BusinessID:  business.ID,
			Amount:      pr.Amount,
			Description: pr.Description,
			WorkPlan:    pr.WorkPlan,
			Status:      models.ProposalStatusPending,
		}
		if err := proposalRepo.Create(scopedCtx, proposal); err != nil {
			return fmt.Errorf("failed to seed proposal on %s: %w", pr.Project, err)
		}
	}

	logger.Info("Demo data seeded",
		zap.Int("users", len(users)),
		zap.Int("projects", len(projects)),
		zap.Int("proposals", len(fx.Proposals)))

	return nil
}
