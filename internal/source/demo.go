package source

import (
	"context"
	"strings"

	"github.com/cloudportal/backend-go/internal/domain"
	"github.com/google/uuid"
)

// demoNamespace seeds deterministic resource IDs for the demo inventories
var demoNamespace = uuid.MustParse("6f1c7a52-2d0b-4a8e-9a53-3f0f4a7c9e21")

type demoResource struct {
	name     string
	typ      string
	category domain.Category
	location string
	status   domain.Status
	specs    []domain.SpecField
	mrr      float64
}

var privateCloudResources = []demoResource{
	{"app-vm-01", "Virtual Machine", domain.CategoryCompute, "Mumbai DC-1", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("cpu_cores", domain.Number(8)),
			domain.Field("ram_gb", domain.Number(32)),
			domain.Field("os", domain.Text("Ubuntu 22.04 LTS")),
		}, 420},
	{"app-vm-02", "Virtual Machine", domain.CategoryCompute, "Chennai DC-1", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("cpu_cores", domain.Number(4)),
			domain.Field("ram_gb", domain.Number(16)),
			domain.Field("os", domain.Text("RHEL 9")),
		}, 260},
	{"san-block-01", "Block Storage", domain.CategoryStorage, "Mumbai DC-2", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("capacity_tb", domain.Number(20)),
			domain.Field("tier", domain.Text("SSD")),
			domain.Field("iops", domain.Number(15000)),
		}, 610},
	{"core-fw-01", "Next-Gen Firewall", domain.CategorySecurity, "Mumbai DC-1", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("throughput_gbps", domain.Number(10)),
			domain.Field("ha_mode", domain.Text("active-passive")),
		}, 380},
	{"lb-edge-01", "Load Balancer", domain.CategoryNetwork, "Chennai DC-2", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("bandwidth_mbps", domain.Number(1000)),
			domain.Field("algorithm", domain.Text("least-connections")),
		}, 190},
	{"pg-primary", "PostgreSQL Cluster", domain.CategoryDatabase, "Chennai DC-1", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("version", domain.Text("15.4")),
			domain.Field("storage_gb", domain.Number(500)),
			domain.Field("replicas", domain.Number(2)),
		}, 540},
	{"backup-svc", "Managed Backup", domain.CategoryManagedServices, "Mumbai DC-2", domain.StatusInactive,
		[]domain.SpecField{
			domain.Field("retention_days", domain.Number(30)),
			domain.Field("schedule", domain.Text("daily 02:00")),
		}, 150},
}

var hyperscalerResources = []demoResource{
	{"web-tier", "Instance Group", domain.CategoryCompute, "Mumbai Region", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("instance_type", domain.Text("m6i.xlarge")),
			domain.Field("cpu_cores", domain.Number(4)),
			domain.Field("ram_gb", domain.Number(16)),
			domain.Field("instances", domain.Number(3)),
		}, 980},
	{"object-store", "Object Storage", domain.CategoryStorage, "Mumbai Region", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("capacity_tb", domain.Number(12)),
			domain.Field("storage_class", domain.Text("standard")),
		}, 280},
	{"vpc-main", "Virtual Network", domain.CategoryNetwork, "Chennai Zone", domain.StatusActive,
		[]domain.SpecField{
			domain.Field("cidr", domain.Text("10.20.0.0/16")),
			domain.Field("subnets", domain.Number(6)),
		}, 45},
	{"orders-db", "Managed SQL", domain.CategoryDatabase, "Chennai Zone", domain.StatusProvisioning,
		[]domain.SpecField{
			domain.Field("engine", domain.Text("postgres")),
			domain.Field("vcpu", domain.Number(8)),
			domain.Field("storage_gb", domain.Number(1000)),
		}, 1320},
}

// DemoSource serves built-in sample inventories
type DemoSource struct{}

// NewDemoSource creates a DemoSource
func NewDemoSource() *DemoSource { return &DemoSource{} }

// Name identifies the source in logs and metrics
func (s *DemoSource) Name() string { return "demo" }

// Fetch returns the sample inventory for provider. Private-cloud providers
// get the on-premise catalog; everything else gets a hyperscaler catalog
// plus its service records.
func (s *DemoSource) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if customer == "" || provider == "" {
		return nil, ErrMissingSelector
	}

	catalog := hyperscalerResources
	hyperscaler := true
	if isPrivateCloud(provider) {
		catalog = privateCloudResources
		hyperscaler = false
	}

	snap := &domain.Snapshot{
		CustomerName: customer,
		Provider:     provider,
		Resources:    make([]domain.Resource, 0, len(catalog)),
	}
	for _, d := range catalog {
		snap.Resources = append(snap.Resources, domain.Resource{
			ID:       demoID(customer, provider, d.name),
			Name:     d.name,
			Type:     d.typ,
			Category: d.category,
			Location: d.location,
			Status:   d.status,
			Specs:    domain.NewSpecs(d.specs...),
			MRR:      d.mrr,
		})
	}
	if hyperscaler {
		snap.Services = demoServices(customer, provider)
	}
	return snap, nil
}

func demoServices(customer, provider string) []domain.Service {
	return []domain.Service{
		{
			ID:      demoID(customer, provider, "svc-compute"),
			Service: "Compute",
			Name:    "web-tier",
			Details: map[string]string{"region": "ap-south-1", "autoscaling": "enabled"},
			Tags:    map[string]string{"owner": "platform", "env": "production"},
		},
		{
			ID:      demoID(customer, provider, "svc-database"),
			Service: "Database",
			Name:    "orders-db",
			Details: map[string]string{"region": "ap-south-2", "backup": "point-in-time"},
			Tags:    map[string]string{"owner": "payments", "env": "production"},
		},
	}
}

func isPrivateCloud(provider string) bool {
	p := strings.ToLower(provider)
	return strings.Contains(p, "private") || strings.Contains(p, "on-prem")
}

func demoID(customer, provider, name string) string {
	return uuid.NewSHA1(demoNamespace, []byte(customer+"/"+provider+"/"+name)).String()
}
