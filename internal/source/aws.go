package source

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/cloudportal/backend-go/internal/domain"
)

// regionCities maps AWS regions to the city names the map view uses
var regionCities = map[string]string{
	"ap-south-1":     "Mumbai",
	"ap-south-2":     "Hyderabad",
	"ap-southeast-1": "Singapore",
	"us-east-1":      "N. Virginia",
	"eu-central-1":   "Frankfurt",
}

// AWSSource discovers EC2 instances and RDS clusters in one region.
// All calls are read-only Describe* operations.
type AWSSource struct {
	ec2Client ec2.DescribeInstancesAPIClient
	rdsClient rds.DescribeDBClustersAPIClient
	region    string
}

// NewAWSSource creates an AWSSource with the default credential chain
func NewAWSSource(ctx context.Context, region string) (*AWSSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return newAWSSource(ec2.NewFromConfig(cfg), rds.NewFromConfig(cfg), region), nil
}

func newAWSSource(ec2Client ec2.DescribeInstancesAPIClient, rdsClient rds.DescribeDBClustersAPIClient, region string) *AWSSource {
	return &AWSSource{ec2Client: ec2Client, rdsClient: rdsClient, region: region}
}

// Name identifies the source in logs and metrics
func (s *AWSSource) Name() string { return "aws" }

// Fetch builds a snapshot of the account's instances and database clusters
func (s *AWSSource) Fetch(ctx context.Context, customer, provider string) (*domain.Snapshot, error) {
	if provider == "" {
		provider = "AWS"
	}
	snap := &domain.Snapshot{
		CustomerName: customer,
		Provider:     provider,
		Resources:    make([]domain.Resource, 0),
		Services:     make([]domain.Service, 0),
	}

	// EC2 instances
	pages := ec2.NewDescribeInstancesPaginator(s.ec2Client, &ec2.DescribeInstancesInput{})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe EC2 instances: %w", err)
		}
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				r, svc := s.instanceToResource(inst)
				snap.Resources = append(snap.Resources, r)
				snap.Services = append(snap.Services, svc)
			}
		}
	}

	// RDS clusters
	clusters := rds.NewDescribeDBClustersPaginator(s.rdsClient, &rds.DescribeDBClustersInput{})
	for clusters.HasMorePages() {
		page, err := clusters.NextPage(ctx)
		if err != nil {
			log.Printf("RDS describe failed (non-fatal): %v", err)
			break
		}
		for _, cluster := range page.DBClusters {
			snap.Resources = append(snap.Resources, s.clusterToResource(cluster))
		}
	}

	return snap, nil
}

func (s *AWSSource) instanceToResource(inst ec2types.Instance) (domain.Resource, domain.Service) {
	instID := aws.ToString(inst.InstanceId)
	tags := make(map[string]string)
	instName := instID
	for _, t := range inst.Tags {
		tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		if aws.ToString(t.Key) == "Name" {
			instName = aws.ToString(t.Value)
		}
	}

	stateName := ""
	status := domain.StatusMaintenance
	if inst.State != nil {
		stateName = string(inst.State.Name)
		switch inst.State.Name {
		case ec2types.InstanceStateNameRunning:
			status = domain.StatusActive
		case ec2types.InstanceStateNameStopped, ec2types.InstanceStateNameTerminated:
			status = domain.StatusInactive
		case ec2types.InstanceStateNamePending:
			status = domain.StatusProvisioning
		}
	}

	cores := 0.0
	if inst.CpuOptions != nil {
		cores = float64(aws.ToInt32(inst.CpuOptions.CoreCount))
	}
	az := ""
	if inst.Placement != nil {
		az = aws.ToString(inst.Placement.AvailabilityZone)
	}

	resource := domain.Resource{
		ID:       instID,
		Name:     instName,
		Type:     "EC2 Instance",
		Category: domain.CategoryCompute,
		Location: s.location(az),
		Status:   status,
		Specs: domain.NewSpecs(
			domain.Field("instance_type", domain.Text(string(inst.InstanceType))),
			domain.Field("cpu_cores", domain.Number(cores)),
			domain.Field("private_ip", domain.Text(aws.ToString(inst.PrivateIpAddress))),
		),
	}
	service := domain.Service{
		ID:      instID,
		Service: "EC2",
		Name:    instName,
		Details: map[string]string{
			"state":         stateName,
			"instance_type": string(inst.InstanceType),
			"vpc_id":        aws.ToString(inst.VpcId),
			"az":            az,
		},
		Tags: tags,
	}
	return resource, service
}

func (s *AWSSource) clusterToResource(cluster rdstypes.DBCluster) domain.Resource {
	clusterID := aws.ToString(cluster.DBClusterIdentifier)
	status := domain.StatusMaintenance
	switch aws.ToString(cluster.Status) {
	case "available":
		status = domain.StatusActive
	case "creating":
		status = domain.StatusProvisioning
	case "stopped":
		status = domain.StatusInactive
	}

	az := ""
	if len(cluster.AvailabilityZones) > 0 {
		az = cluster.AvailabilityZones[0]
	}

	return domain.Resource{
		ID:       clusterID,
		Name:     clusterID,
		Type:     "RDS Cluster",
		Category: domain.CategoryDatabase,
		Location: s.location(az),
		Status:   status,
		Specs: domain.NewSpecs(
			domain.Field("engine", domain.Text(aws.ToString(cluster.Engine))),
			domain.Field("engine_version", domain.Text(aws.ToString(cluster.EngineVersion))),
			domain.Field("members", domain.Number(float64(len(cluster.DBClusterMembers)))),
			domain.Field("allocated_storage_gb", domain.Number(float64(aws.ToInt32(cluster.AllocatedStorage)))),
		),
	}
}

// location renders an availability zone as "City (az)" so substring
// filters on the city name match
func (s *AWSSource) location(az string) string {
	region := s.region
	if az != "" {
		region = strings.TrimRight(az, "abcdefghijklmnopqrstuvwxyz")
	}
	city, ok := regionCities[region]
	if !ok {
		if az != "" {
			return az
		}
		return region
	}
	if az == "" {
		return city
	}
	return city + " (" + az + ")"
}
