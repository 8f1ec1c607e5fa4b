package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE tenants (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				slug VARCHAR(255) NOT NULL UNIQUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE profiles (
				id VARCHAR(255) PRIMARY KEY,
				full_name VARCHAR(255),
				username VARCHAR(255),
				tenant_id UUID REFERENCES tenants(id),
				role VARCHAR(50) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				tenant_id UUID NOT NULL REFERENCES tenants(id),
				name VARCHAR(255) NOT NULL,
				nodes JSONB NOT NULL DEFAULT '[]',
				edges JSONB NOT NULL DEFAULT '[]',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'pending_review', 'approved', 'published')),
				is_published BOOLEAN NOT NULL DEFAULT FALSE,
				created_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_tenant_id ON workflows(tenant_id);
			CREATE INDEX idx_workflows_status ON workflows(status);
			CREATE INDEX idx_workflows_is_published ON workflows(is_published);
			CREATE INDEX idx_workflows_updated_at ON workflows(updated_at);

			CREATE TABLE comments (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				node_id VARCHAR(255) NOT NULL,
				user_id VARCHAR(255) NOT NULL,
				user_name VARCHAR(255),
				content TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_comments_thread ON comments(workflow_id, node_id, created_at);
		`,
	}
}
