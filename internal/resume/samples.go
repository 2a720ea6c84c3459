package resume

import "strings"

const sampleResume = `
Jane Smith
Backend Engineer
jane.smith@example.com
+1 (555) 010-2020

SUMMARY
Backend engineer with six years of experience building web services and data pipelines.

EXPERIENCE
Software Engineer at Northwind Labs (2020-2025)
- Built REST services in Python and Flask serving internal analytics teams
- Moved nightly batch jobs to a message queue, cutting processing time
- Reviewed code and mentored two junior engineers

Junior Developer at Brightside Media (2018-2020)
- Maintained a PHP content platform and its MySQL database
- Wrote integration tests for third-party payment APIs

SKILLS
Python, Flask, SQL, PostgreSQL, Docker, Git, Linux, REST APIs

EDUCATION
BSc Computer Science, State University (2018)
`

const sampleJobDescription = `
Senior Python Developer at Meridian Analytics

Meridian Analytics is hiring a senior Python developer to design and scale the APIs behind
its reporting product. You will own services end to end, from schema design to deployment
on AWS, and work closely with product and data teams.

Requirements:
- 5+ years of professional Python development
- Production experience with Django and Django REST Framework
- Strong PostgreSQL skills including query optimization
- Experience with AWS (ECS, RDS, S3) and infrastructure as code
- Familiarity with CI/CD pipelines and automated testing
- Clear written and spoken communication
`

// SampleResume returns the built-in resume used when no resume is supplied.
func SampleResume() string {
	return strings.TrimSpace(sampleResume)
}

// SampleJobDescription returns the built-in job description used when none is supplied.
func SampleJobDescription() string {
	return strings.TrimSpace(sampleJobDescription)
}
