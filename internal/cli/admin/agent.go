package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/casavia/casavia/internal/config"
	"github.com/casavia/casavia/internal/database"
	"github.com/casavia/casavia/internal/repository"
	"github.com/casavia/casavia/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
		Long:  "Create and list listing agents",
	}

	cmd.AddCommand(AgentCreateCmd())
	cmd.AddCommand(AgentListCmd())

	return cmd
}

func AgentCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new agent",
		Long:  "Create a new listing agent account",
		RunE:  runAgentCreate,
	}

	cmd.Flags().StringP("name", "n", "", "Agent name (required)")
	cmd.Flags().StringP("email", "e", "", "Agent email (required)")
	cmd.Flags().String("phone", "", "Agent phone number")
	cmd.Flags().String("agency", "", "Agency name")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	phone, _ := cmd.Flags().GetString("phone")
	agency, _ := cmd.Flags().GetString("agency")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)
	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(agentRepo, nil, uuidGen)

	agent, err := authSvc.CreateAgent(ctx, service.CreateAgentInput{
		Name:   name,
		Email:  email,
		Phone:  phone,
		Agency: agency,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         agent.ID,
			"name":       agent.Name,
			"email":      agent.Email,
			"created_at": agent.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Agent created: %s <%s> (%s)\n", agent.Name, agent.Email, agent.ID)
	}

	return nil
}

func AgentListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all agents",
		Long:  "List all agents in the system",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runAgentList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAgentList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)

	agents, err := agentRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(agents))
		for i, agent := range agents {
			data[i] = map[string]interface{}{
				"id":         agent.ID,
				"name":       agent.Name,
				"email":      agent.Email,
				"agency":     agent.Agency,
				"created_at": agent.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(agents) == 0 {
			fmt.Println("No agents found")
			return nil
		}
		fmt.Println("Agents:")
		for _, agent := range agents {
			fmt.Printf("  %s: %s <%s> (created: %s)\n", agent.ID, agent.Name, agent.Email, agent.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return database.NewPoolFromURL(ctx, cfg.DatabaseURL)
}
