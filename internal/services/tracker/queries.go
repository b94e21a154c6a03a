package tracker

// GraphQL documents used by the client

const queryTeams = `
query {
  teams {
    nodes {
      id
      name
      key
    }
  }
}`

const queryProjects = `
query FetchProjects($teamId: String!) {
  team(id: $teamId) {
    projects {
      nodes {
        id
        name
      }
    }
  }
}`

const queryTeamDetails = `
query FetchTeamDetails($teamId: String!) {
  team(id: $teamId) {
    states {
      nodes {
        id
        name
        type
        position
      }
    }
    members {
      nodes {
        id
        name
        displayName
      }
    }
    labels {
      nodes {
        id
        name
        color
      }
    }
  }
}`

const mutationCreateIssue = `
mutation CreateIssue($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue {
      id
      identifier
      title
      url
    }
  }
}`
